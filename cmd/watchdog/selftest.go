package main

import (
	"fmt"
	"os"
	"time"

	"github.com/diffstorm/processWatchdog/internal/reboot"
	"github.com/diffstorm/processWatchdog/internal/udpcmd"
)

// selfTests implements "-t NAME": implementation-defined
// self-checks that exit non-interactively, intended for smoke-testing a
// deployed binary without standing up a full config.
var selfTests = map[string]func() error{
	"reboot-parse": testRebootParse,
	"udp-decode":   testUDPDecode,
}

func runSelfTest(name string) int {
	fn, ok := selfTests[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown self-test %q\n", name)
		return 1
	}
	if err := fn(); err != nil {
		fmt.Fprintf(os.Stderr, "self-test %q failed: %v\n", name, err)
		return 1
	}
	fmt.Printf("self-test %q passed\n", name)
	return 0
}

func testRebootParse() error {
	p := reboot.ParsePolicy("04:00")
	if p.Kind != reboot.Daily || p.Hour != 4 || p.Minute != 0 {
		return fmt.Errorf("unexpected parse result: %+v", p)
	}
	if reboot.ParsePolicy("2h").Kind != reboot.Interval {
		return fmt.Errorf("expected interval policy for %q", "2h")
	}
	return nil
}

func testUDPDecode() error {
	ep, err := udpcmd.Listen(0)
	if err != nil {
		return err
	}
	defer ep.Close()

	_, werr := ep.Poll(10 * time.Millisecond)
	if werr != nil {
		return fmt.Errorf("poll on idle socket should time out cleanly: %w", werr)
	}
	return nil
}
