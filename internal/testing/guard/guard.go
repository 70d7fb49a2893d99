package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CINEDESK_TEST_MODE") == "" {
			_ = os.Setenv("CINEDESK_TEST_MODE", "1")
		}
	})
}
