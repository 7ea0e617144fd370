package output

import (
	"image/color"
	"testing"

	"deedles.dev/ximage/geom"
)

func TestFrame(t *testing.T) {
	f := newFixture()

	dev := &fakeDevice{id: 1, name: "DP-1", modes: []Mode{{Width: 800, Height: 600, Preferred: true}}}
	f.add(dev)
	out, _ := f.server.Output(1)
	start := out.LastFrame()

	dev.frame.emit(dev)

	if len(f.renderer.calls) != 1 {
		t.Fatalf("render calls = %v, want 1", len(f.renderer.calls))
	}
	call := f.renderer.calls[0]
	if call.size != geom.Pt(800, 600) {
		t.Errorf("size = %v, want 800x600", call.size)
	}
	if call.color != color.Color(DefaultColor) {
		t.Errorf("color = %v, want %v", call.color, DefaultColor)
	}
	if dev.commits != 2 {
		t.Errorf("commits = %v, want 2", dev.commits)
	}
	if !out.LastFrame().After(start) {
		t.Error("timestamp not updated")
	}
	if out.Frames() != 1 {
		t.Errorf("frames = %v, want 1", out.Frames())
	}
}

func TestFrameColor(t *testing.T) {
	backend := new(fakeBackend)
	renderer := &fakeRenderer{}
	fill := color.NRGBA{0x10, 0x20, 0x30, 0xFF}
	_, err := NewServer(backend, renderer, new(fakeAllocator), Config{Color: fill, Log: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}

	dev := &fakeDevice{id: 1, name: "DP-1", size: geom.Pt(10, 10)}
	backend.newDevice.emit(dev)
	dev.frame.emit(dev)

	if len(renderer.calls) != 1 {
		t.Fatalf("render calls = %v, want 1", len(renderer.calls))
	}
	if renderer.calls[0].color != color.Color(fill) {
		t.Errorf("color = %v, want %v", renderer.calls[0].color, fill)
	}
}

func TestAttachFailure(t *testing.T) {
	f := newFixture()

	d := &fakeDevice{id: 1, name: "DP-1", size: geom.Pt(100, 100)}
	other := &fakeDevice{id: 2, name: "DP-2", size: geom.Pt(200, 200)}
	f.add(d)
	f.add(other)

	out, _ := f.server.Output(1)
	before := out.LastFrame()

	f.renderer.attachErr[d.id] = errFake
	d.frame.emit(d)
	other.frame.emit(other)

	if !out.LastFrame().Equal(before) {
		t.Errorf("timestamp changed from %v to %v", before, out.LastFrame())
	}
	if out.Frames() != 0 {
		t.Errorf("frames = %v, want 0", out.Frames())
	}
	if d.commits != 0 {
		t.Errorf("commits = %v, want 0", d.commits)
	}
	if !d.subscribed() {
		t.Error("subscriptions changed")
	}

	if len(f.renderer.calls) != 1 {
		t.Fatalf("render calls = %v, want 1", len(f.renderer.calls))
	}
	if f.renderer.calls[0].dev != other.id {
		t.Errorf("rendered %v, want %v", f.renderer.calls[0].dev, other.id)
	}

	// The next frame retries.
	delete(f.renderer.attachErr, d.id)
	d.frame.emit(d)
	if out.Frames() != 1 {
		t.Errorf("frames after retry = %v, want 1", out.Frames())
	}
}

func TestCommitFailure(t *testing.T) {
	f := newFixture()

	dev := &fakeDevice{id: 1, name: "DP-1", size: geom.Pt(100, 100)}
	f.add(dev)
	out, _ := f.server.Output(1)

	dev.commitErr = errFake
	dev.frame.emit(dev)

	if out.Frames() != 1 {
		t.Errorf("frames = %v, want 1", out.Frames())
	}
	if !f.server.outputs.Contains(1) {
		t.Error("output dropped after failed commit")
	}
}

func TestNoFrameAfterRemoval(t *testing.T) {
	f := newFixture()

	dev := &fakeDevice{id: 1, name: "DP-1", size: geom.Pt(100, 100)}
	f.add(dev)
	out, _ := f.server.Output(1)

	// A frame handler captured before removal must not run afterwards.
	frame := dev.frame.handlers[0]
	dev.remove.emit(dev)
	frame(dev)
	dev.frame.emit(dev)

	if len(f.renderer.calls) != 0 {
		t.Errorf("render calls = %v, want 0", len(f.renderer.calls))
	}
	if out.Frames() != 0 {
		t.Errorf("frames = %v, want 0", out.Frames())
	}
}

func TestEndToEnd(t *testing.T) {
	f := newFixture()

	preferred := Mode{Width: 1920, Height: 1080, Refresh: 60000, Preferred: true}
	dev := &fakeDevice{id: 1, name: "DP-1", modes: []Mode{
		preferred,
		{Width: 1280, Height: 720, Refresh: 60000},
	}}
	f.backend.devices = append(f.backend.devices, dev)

	err := f.backend.Start()
	if err != nil {
		t.Fatal(err)
	}

	if dev.mode != preferred {
		t.Fatalf("mode = %v, want %v", dev.mode, preferred)
	}
	if dev.commits != 1 {
		t.Fatalf("commits after activation = %v, want 1", dev.commits)
	}

	out, ok := f.server.Output(dev.id)
	if !ok {
		t.Fatal("output not registered")
	}

	last := out.LastFrame()
	for i := 1; i <= 10; i++ {
		// The backend stops delivering once the device is gone.
		if dev.frame.len() == 0 {
			break
		}
		dev.frame.emit(dev)

		if !out.LastFrame().After(last) {
			t.Fatalf("frame %v: timestamp not updated", i)
		}
		last = out.LastFrame()

		if i == 5 {
			dev.remove.emit(dev)
		}
	}

	if len(f.renderer.calls) != 5 {
		t.Errorf("render calls = %v, want 5", len(f.renderer.calls))
	}
	for i, call := range f.renderer.calls {
		if call.size != geom.Pt(1920, 1080) {
			t.Errorf("call %v: size = %v, want 1920x1080", i, call.size)
		}
	}
	if dev.commits != 6 {
		t.Errorf("commits = %v, want 6", dev.commits)
	}
	if out.Frames() != 5 {
		t.Errorf("frames = %v, want 5", out.Frames())
	}
	if f.server.Len() != 0 {
		t.Errorf("registry has %v outputs, want 0", f.server.Len())
	}
}
