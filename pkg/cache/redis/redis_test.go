package redis

import (
	"testing"
	"time"
)

func TestConnectionInfo_Options(t *testing.T) {
	info := ConnectionInfo{
		Addr:        "cache:6379",
		DB:          3,
		MaxRetries:  2,
		DialTimeout: 4 * time.Second,
		Timeout:     time.Second,
	}

	opts := info.options()

	if opts.Addr != "cache:6379" || opts.DB != 3 || opts.MaxRetries != 2 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.ReadTimeout != time.Second || opts.WriteTimeout != time.Second {
		t.Errorf("expected read/write timeouts of 1s, got %v/%v", opts.ReadTimeout, opts.WriteTimeout)
	}
}
