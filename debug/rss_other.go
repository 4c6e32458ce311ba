//go:build !windows && !unix

package debug

import "errors"

func residentSetSize() (uint64, error) {
	return 0, errors.New("rss not supported on this platform")
}
