package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"

	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// solidArt returns a w x h PNG filled with c, with the left column set to marker.
func solidArt(t *testing.T, w, h int, c, marker color.NRGBA) *model.Art {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 {
				img.SetNRGBA(x, y, marker)
			} else {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return model.NewArt("test.png", buf.Bytes())
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

type fixture struct {
	ch    *model.Character
	torso *model.Part
	head  *model.Part
	anim  *model.Animation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ch := model.NewCharacter("hero")
	if err := ch.SetCanvas(8, 8); err != nil {
		t.Fatal(err)
	}
	torso, _ := ch.AddPart("torso", rotation.Res8)
	head, _ := ch.AddPart("head", rotation.Res8)
	head.DefaultZ = 10

	ts, _ := torso.AddState("straight")
	ts.SetArt(0, solidArt(t, 4, 4, red, red))
	ts.SetArt(rotation.Degrees(45), solidArt(t, 4, 4, red, green))

	hs, _ := head.AddState("straight")
	hs.SetArt(0, solidArt(t, 2, 2, blue, blue))

	anim, _ := ch.AddAnimation("idle")
	return &fixture{ch: ch, torso: torso, head: head, anim: anim}
}

func place(f *model.Frame, id uint64, part model.PartID, angle float64, x, y int) *model.PlacedPart {
	pp := model.NewPlacedPart(part, "straight", rotation.Degrees(angle))
	pp.ID = id
	pp.Offset = image.Pt(x, y)
	f.Place(pp)
	return pp
}

func TestCompositeOrdersByZ(t *testing.T) {
	fx := newFixture(t)
	fr := fx.anim.AddFrame()
	place(fr, 1, fx.head.ID, 0, 0, 0)
	place(fr, 2, fx.torso.ID, 0, 0, 0)

	ops, err := Composite(fx.ch, fx.anim, 0)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if ops[0].Part != fx.torso.ID || ops[1].Part != fx.head.ID {
		t.Errorf("order = %v, %v; want torso then head", ops[0].Layer, ops[1].Layer)
	}
}

func TestCompositeTiesKeepInsertionOrder(t *testing.T) {
	fx := newFixture(t)
	fr := fx.anim.AddFrame()
	for i := 1; i <= 5; i++ {
		place(fr, uint64(i), fx.torso.ID, 0, i, 0)
	}
	first, err := Composite(fx.ch, fx.anim, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, op := range first {
		if op.Placement != uint64(i+1) {
			t.Errorf("op %d placement = %d, want %d", i, op.Placement, i+1)
		}
	}
	for n := 0; n < 10; n++ {
		again, _ := Composite(fx.ch, fx.anim, 0)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Composite is not deterministic")
		}
	}
}

func TestCompositeFrameOverrideIsolated(t *testing.T) {
	fx := newFixture(t)
	f0 := fx.anim.AddFrame()
	f1 := fx.anim.AddFrame()
	for _, fr := range []*model.Frame{f0, f1} {
		place(fr, 1, fx.torso.ID, 0, 0, 0)
		place(fr, 2, fx.head.ID, 0, 0, 0)
	}
	f0.SetZ(fx.torso.ID, 99)

	ops0, _ := Composite(fx.ch, fx.anim, 0)
	ops1, _ := Composite(fx.ch, fx.anim, 1)
	if ops0[1].Part != fx.torso.ID || ops0[1].ZTier != model.ZTierFrame {
		t.Errorf("frame 0 top = %s (%v), want torso via frame tier", ops0[1].Layer, ops0[1].ZTier)
	}
	if ops1[1].Part != fx.head.ID || ops1[0].ZTier != model.ZTierCharacter {
		t.Errorf("frame 1 changed by frame 0 override: top=%s", ops1[1].Layer)
	}
}

func TestCompositeMirrorXOR(t *testing.T) {
	fx := newFixture(t)
	fr := fx.anim.AddFrame()
	a := place(fr, 1, fx.torso.ID, 315, 0, 0) // resolver mirrors 45
	b := place(fr, 2, fx.torso.ID, 315, 0, 0)
	b.Mirror = true
	c := place(fr, 3, fx.torso.ID, 45, 0, 0)
	c.Mirror = true
	_ = a

	ops, err := Composite(fx.ch, fx.anim, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, false, true}
	for i, op := range ops {
		if op.Mirrored != want[i] {
			t.Errorf("op %d mirrored = %v, want %v", i, op.Mirrored, want[i])
		}
	}
}

func TestCompositeSkipsHidden(t *testing.T) {
	fx := newFixture(t)
	fr := fx.anim.AddFrame()
	place(fr, 1, fx.torso.ID, 0, 0, 0).Visible = false
	place(fr, 2, fx.head.ID, 0, 0, 0)
	ops, _ := Composite(fx.ch, fx.anim, 0)
	if len(ops) != 1 || ops[0].Part != fx.head.ID {
		t.Errorf("expected only head, got %+v", ops)
	}
}

func TestCompositeErrors(t *testing.T) {
	fx := newFixture(t)
	fr := fx.anim.AddFrame()
	place(fr, 1, fx.torso.ID, 180, 0, 0)

	_, err := Composite(fx.ch, fx.anim, 0)
	var fe *model.FrameError
	if !errors.As(err, &fe) || !errors.Is(err, rotation.ErrUnresolvableAngle) {
		t.Fatalf("error = %v, want FrameError wrapping ErrUnresolvableAngle", err)
	}
	if fe.Frame != 0 || fe.Animation != "idle" || fe.Layer != "torso" {
		t.Errorf("FrameError = %+v", fe)
	}

	fr.Placements[0] = model.NewPlacedPart(model.PartID(42), "straight", 0)
	if _, err := Composite(fx.ch, fx.anim, 0); !errors.Is(err, model.ErrDanglingPartReference) {
		t.Errorf("error = %v, want ErrDanglingPartReference", err)
	}

	if _, err := Composite(fx.ch, fx.anim, 5); !errors.Is(err, model.ErrFrameOutOfRange) {
		t.Errorf("error = %v, want ErrFrameOutOfRange", err)
	}
}

func TestCompositeWithCache(t *testing.T) {
	fx := newFixture(t)
	place(fx.anim.AddFrame(), 1, fx.torso.ID, 315, 0, 0)
	cache := rotation.NewCache()
	c := New(cache, nil)
	if _, err := c.Composite(fx.ch, fx.anim, 0); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 1 {
		t.Errorf("cache len = %d, want 1", cache.Len())
	}
}

func TestRenderLayersAndClips(t *testing.T) {
	fx := newFixture(t)
	fr := fx.anim.AddFrame()
	place(fr, 1, fx.torso.ID, 0, 6, 6) // 4x4 at (6,6) clipped to 2x2
	place(fr, 2, fx.head.ID, 0, 6, 6)  // 2x2 on top
	place(fr, 3, fx.torso.ID, 0, -2, 0)

	img, err := New(nil, nil).RenderFrame(fx.ch, fx.anim, 0)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(7, 7); got != blue {
		t.Errorf("(7,7) = %v, want head blue on top", got)
	}
	if got := img.NRGBAAt(1, 0); got != red {
		t.Errorf("(1,0) = %v, want clipped torso red", got)
	}
	if got := img.NRGBAAt(4, 4); got.A != 0 {
		t.Errorf("(4,4) = %v, want transparent", got)
	}
}

func TestRenderMirrored(t *testing.T) {
	fx := newFixture(t)
	place(fx.anim.AddFrame(), 1, fx.torso.ID, 315, 0, 0)
	img, err := New(nil, nil).RenderFrame(fx.ch, fx.anim, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Source art at 45° has a green left column; mirrored it lands on x=3.
	if got := img.NRGBAAt(3, 0); got != green {
		t.Errorf("(3,0) = %v, want green marker", got)
	}
	if got := img.NRGBAAt(0, 0); got != red {
		t.Errorf("(0,0) = %v, want red", got)
	}
}

func TestRenderAlphaOver(t *testing.T) {
	fx := newFixture(t)
	half := color.NRGBA{B: 255, A: 128}
	glass, _ := fx.ch.AddPart("glass", rotation.Res8)
	glass.DefaultZ = 20
	gs, _ := glass.AddState("straight")
	gs.SetArt(0, solidArt(t, 2, 2, half, half))

	fr := fx.anim.AddFrame()
	place(fr, 1, fx.torso.ID, 0, 0, 0)
	place(fr, 2, glass.ID, 0, 0, 0)

	img, err := New(nil, nil).RenderFrame(fx.ch, fx.anim, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := img.NRGBAAt(1, 1)
	if got.A != 255 {
		t.Errorf("alpha = %d, want 255", got.A)
	}
	if !near(got.R, 127) || !near(got.B, 128) || got.G != 0 {
		t.Errorf("blend = %v, want about R127 B128", got)
	}
}

func TestRenderDecodeFailureIsUnresolvable(t *testing.T) {
	fx := newFixture(t)
	st := fx.torso.State("straight")
	st.SetArt(rotation.Degrees(90), model.NewArt("broken.png", []byte("garbage")))
	place(fx.anim.AddFrame(), 1, fx.torso.ID, 90, 0, 0)

	_, err := New(nil, nil).RenderFrame(fx.ch, fx.anim, 0)
	if !errors.Is(err, rotation.ErrUnresolvableAngle) {
		t.Errorf("error = %v, want ErrUnresolvableAngle", err)
	}
}

func TestRenderInvalidCanvas(t *testing.T) {
	if _, err := Render(nil, image.Pt(0, 4), nil); !errors.Is(err, model.ErrInvalidCanvas) {
		t.Errorf("error = %v, want ErrInvalidCanvas", err)
	}
}

func near(got, want uint8) bool {
	d := int(got) - int(want)
	return d >= -2 && d <= 2
}
