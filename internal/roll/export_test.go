// AngelaMos | 2026
// export_test.go

package roll

import "time"

func SetClock(s *Service, now func() time.Time) {
	s.now = now
}
