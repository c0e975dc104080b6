package libchannel

import "testing"

// checkRing verifies the circular-buffer invariant under no concurrency.
func checkRing(t *testing.T, c *hchan) {
	t.Helper()
	if c.qcount < 0 || c.qcount > c.dataqsiz {
		t.Fatalf("qcount = %d out of [0, %d]", c.qcount, c.dataqsiz)
	}
	if c.sendx != (c.recvx+c.qcount)%c.dataqsiz {
		t.Fatalf("sendx = %d, want (recvx %d + qcount %d) %% %d", c.sendx, c.recvx, c.qcount, c.dataqsiz)
	}
}

func TestBufWrapAround(t *testing.T) {
	c := newChan(3)
	var v Value

	// fill
	for i := 0; i < 3; i++ {
		if !c.bufput(Int64Val(int64(i))) {
			t.Fatalf("bufput %d failed on non-full buffer", i)
		}
		checkRing(t, c)
	}
	if c.bufput(Int64Val(99)) {
		t.Fatal("bufput succeeded on full buffer")
	}

	// drain two, refill two: forces the indices to wrap
	for i := 0; i < 2; i++ {
		if !c.bufget(&v) || v.Int64() != int64(i) {
			t.Fatalf("bufget = %d, want %d", v.Int64(), i)
		}
		checkRing(t, c)
	}
	for i := 3; i < 5; i++ {
		if !c.bufput(Int64Val(int64(i))) {
			t.Fatalf("bufput %d failed after partial drain", i)
		}
		checkRing(t, c)
	}

	// FIFO through the wrap
	for i := 2; i < 5; i++ {
		if !c.bufget(&v) || v.Int64() != int64(i) {
			t.Fatalf("bufget = %d, want %d", v.Int64(), i)
		}
		checkRing(t, c)
	}
	if c.bufget(&v) {
		t.Fatal("bufget succeeded on empty buffer")
	}
}

func TestShiftGating(t *testing.T) {
	v := Int64Val(1)
	var out Value

	tests := []struct {
		name  string
		setup func(c *hchan)
		try   func(c *hchan) bool
		want  bool
		after func(t *testing.T, c *hchan)
	}{
		{
			name:  "send blocked by foreign reservation",
			setup: func(c *hchan) { c.sendShift = 42 },
			try:   func(c *hchan) bool { return c.trysend(&v, 7) },
			want:  false,
		},
		{
			name:  "send allowed by matching reservation",
			setup: func(c *hchan) { c.sendShift = 42 },
			try:   func(c *hchan) bool { return c.trysend(&v, 42) },
			want:  true,
			after: func(t *testing.T, c *hchan) {
				if c.sendShift != 0 {
					t.Fatalf("sendShift = %d after reserved send, want 0", c.sendShift)
				}
			},
		},
		{
			name:  "send with no reservation",
			setup: func(c *hchan) {},
			try:   func(c *hchan) bool { return c.trysend(&v, 0) },
			want:  true,
		},
		{
			name: "recv blocked by foreign reservation",
			setup: func(c *hchan) {
				c.bufput(v)
				c.recvShift = 42
			},
			try:  func(c *hchan) bool { return c.tryrecv(&out, 7) },
			want: false,
		},
		{
			name: "recv allowed by matching reservation",
			setup: func(c *hchan) {
				c.bufput(v)
				c.recvShift = 42
			},
			try:  func(c *hchan) bool { return c.tryrecv(&out, 42) },
			want: true,
			after: func(t *testing.T, c *hchan) {
				if c.recvShift != 0 {
					t.Fatalf("recvShift = %d after reserved recv, want 0", c.recvShift)
				}
			},
		},
		{
			name:  "reserved send still fails on full buffer",
			setup: func(c *hchan) { c.bufput(v); c.sendShift = 42 },
			try:   func(c *hchan) bool { return c.trysend(&v, 42) },
			want:  false,
			after: func(t *testing.T, c *hchan) {
				if c.sendShift != 42 {
					t.Fatalf("sendShift = %d after failed reserved send, want 42", c.sendShift)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChan(1)
			tt.setup(c)
			if got := tt.try(c); got != tt.want {
				t.Fatalf("try = %v, want %v", got, tt.want)
			}
			if tt.after != nil {
				tt.after(t, c)
			}
		})
	}
}

func TestIsCloseable(t *testing.T) {
	w := newWaiter()
	tests := []struct {
		name  string
		setup func(c *hchan)
		want  bool
	}{
		{"fresh channel", func(c *hchan) {}, true},
		{"non-empty buffer is not a blocker", func(c *hchan) { c.bufput(Int64Val(1)) }, true},
		{"parked sender", func(c *hchan) { c.sendq.enqueue(w) }, false},
		{"parked receiver", func(c *hchan) { c.recvq.enqueue(w) }, false},
		{"pending send reservation", func(c *hchan) { c.sendShift = 9 }, false},
		{"pending recv reservation", func(c *hchan) { c.recvShift = 9 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChan(1)
			tt.setup(c)
			if got := c.isCloseable(); got != tt.want {
				t.Fatalf("isCloseable = %v, want %v", got, tt.want)
			}
		})
	}
}
