package resource

import (
	"os"
	"testing"
)

func TestSampleSelfSucceeds(t *testing.T) {
	s := NewSampler()
	_, rssKB, ok := s.Sample(os.Getpid())
	if !ok {
		t.Fatalf("expected to sample the current process")
	}
	if rssKB == 0 {
		t.Errorf("expected a non-zero RSS for the current process")
	}
}

func TestSampleNonexistentPIDFails(t *testing.T) {
	s := NewSampler()
	_, _, ok := s.Sample(1 << 30)
	if ok {
		t.Fatalf("expected sampling a bogus pid to fail")
	}
}
