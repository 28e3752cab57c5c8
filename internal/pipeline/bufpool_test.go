package pipeline

import "testing"

func TestDrainBufRoundTrips(t *testing.T) {
	b := getDrainBuf()
	if len(b) != 32<<10 {
		t.Fatalf("unexpected buf len=%d", len(b))
	}
	putDrainBuf(b)

	b2 := getDrainBuf()
	if len(b2) != 32<<10 {
		t.Fatalf("unexpected reused buf len=%d", len(b2))
	}
	putDrainBuf(b2)
}
