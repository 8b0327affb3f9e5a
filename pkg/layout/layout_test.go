package layout

import (
	"testing"

	"github.com/matzehuels/timeline/pkg/timeline"
)

func exampleTimeline() *timeline.Timeline {
	return &timeline.Timeline{
		Duration: 1000000,
		Nodes: []timeline.Node{
			{Name: "CPU0", Type: "core", Jobs: []timeline.Job{
				{From: 0, To: 500000, Tag: timeline.NewTag(1)},
			}},
		},
	}
}

func TestComputeExample(t *testing.T) {
	l := Compute(exampleTimeline(), Default(), monoMeasurer)

	// "CPU0 (core)" is 11 runes: ink width 65, plus two 15 unit margins.
	assertApprox(t, "LabelWidth", l.LabelWidth, 95)
	assertApprox(t, "Width", l.Width, 95+150)
	assertApprox(t, "Height", l.Height, 30)

	if len(l.Rows) != 1 || len(l.Rows[0].Jobs) != 1 {
		t.Fatalf("rows/jobs = %d/%d, want 1/1", len(l.Rows), len(l.Rows[0].Jobs))
	}
	row := l.Rows[0]

	label := row.Label
	if label.Text != "CPU0 (core)" || label.Align != AlignRight {
		t.Errorf("label = %q/%s", label.Text, label.Align)
	}
	assertApprox(t, "label box x", label.Box.X, 15)
	assertApprox(t, "label box w", label.Box.W, 65)
	assertApprox(t, "label x", label.At.X, 14.5) // 15 + 65 - 65 - 0.5
	assertApprox(t, "label y", label.At.Y, 12.5) // 10 - 4.5 + 7

	jb := row.Jobs[0]
	assertApprox(t, "x0", jb.Rect.X, 95)
	assertApprox(t, "x1", jb.Rect.Right(), 95+75)
	assertApprox(t, "rect y", jb.Rect.Y, 0)
	assertApprox(t, "rect h", jb.Rect.H, 20)
	if jb.Caption.Text != "1" {
		t.Errorf("caption = %q, want %q", jb.Caption.Text, "1")
	}
	assertApprox(t, "caption x", jb.Caption.At.X, 129.5) // 95 + 37.5 - 2.5 - 0.5

	if row.Background == nil {
		t.Fatal("auto-fit row should have a background band")
	}
	assertApprox(t, "band x", row.Background.X, 95)
	assertApprox(t, "band y", row.Background.Y, -3)
	assertApprox(t, "band w", row.Background.W, 150)
	assertApprox(t, "band h", row.Background.H, 26)
}

func TestComputeFixedPolicy(t *testing.T) {
	cfg := Default()
	cfg.LabelPolicy = PolicyFixed

	l := Compute(exampleTimeline(), cfg, monoMeasurer)
	assertApprox(t, "LabelWidth", l.LabelWidth, 150)
	assertApprox(t, "Width", l.Width, 300)
	if l.Rows[0].Background != nil {
		t.Error("fixed policy should not draw a background band")
	}
	assertApprox(t, "x0", l.Rows[0].Jobs[0].Rect.X, 150)
	assertApprox(t, "label box w", l.Rows[0].Label.Box.W, 120)
}

func TestComputePageHeight(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7} {
		tl := &timeline.Timeline{Duration: 10}
		for i := 0; i < n; i++ {
			tl.Nodes = append(tl.Nodes, timeline.Node{Name: "n", Type: "t"})
		}
		l := Compute(tl, Default(), monoMeasurer)
		if l.Height != float64(n)*30 {
			t.Errorf("%d nodes: Height = %v, want %v", n, l.Height, float64(n)*30)
		}
		if len(l.Rows) != n {
			t.Errorf("%d nodes: len(Rows) = %d", n, len(l.Rows))
		}
	}
}

func TestComputeRowOffsets(t *testing.T) {
	tl := &timeline.Timeline{
		Duration: 100,
		Nodes: []timeline.Node{
			{Name: "a", Type: "x"},
			{Name: "b", Type: "x"},
			{Name: "c", Type: "x"},
		},
	}
	l := Compute(tl, Default(), monoMeasurer)
	for i, row := range l.Rows {
		if row.Index != i {
			t.Errorf("row %d: Index = %d", i, row.Index)
		}
		assertApprox(t, "row y", row.Y, float64(i)*30)
		assertApprox(t, "label box y", row.Label.Box.Y, float64(i)*30)
	}
}

func TestComputeEmptyNode(t *testing.T) {
	tl := &timeline.Timeline{
		Duration: 100,
		Nodes:    []timeline.Node{{Name: "idle", Type: "sink"}},
	}
	l := Compute(tl, Default(), monoMeasurer)
	row := l.Rows[0]
	if len(row.Jobs) != 0 {
		t.Errorf("len(Jobs) = %d, want 0", len(row.Jobs))
	}
	if row.Label.Text != "idle (sink)" {
		t.Errorf("label = %q", row.Label.Text)
	}
	if row.Background == nil {
		t.Error("empty row should still get a background band")
	}

	cmds := l.Commands()
	if len(cmds) != 2 {
		t.Errorf("len(Commands) = %d, want 2 (label, band)", len(cmds))
	}
}

func TestComputeMonotonicX(t *testing.T) {
	tl := &timeline.Timeline{
		Duration: 1000000,
		Nodes: []timeline.Node{{Name: "w", Type: "async", Jobs: []timeline.Job{
			{From: 700000, To: 800000},
			{From: 10, To: 20},
			{From: 300000, To: 310000},
			{From: 11, To: 15},
		}}},
	}
	l := Compute(tl, Default(), monoMeasurer)
	jobs := tl.Nodes[0].Jobs
	boxes := l.Rows[0].Jobs
	for a := range jobs {
		for b := range jobs {
			if jobs[a].From < jobs[b].From && !(boxes[a].Rect.X < boxes[b].Rect.X) {
				t.Errorf("job %d starts before job %d but x0 %v >= %v", a, b, boxes[a].Rect.X, boxes[b].Rect.X)
			}
		}
	}
	// Input order is preserved.
	assertApprox(t, "first box", boxes[0].Rect.X, l.LabelWidth+105)
}

func TestComputeInvertedJob(t *testing.T) {
	tl := &timeline.Timeline{
		Duration: 1000000,
		Nodes:    []timeline.Node{{Name: "w", Type: "t", Jobs: []timeline.Job{{From: 200000, To: 100000}}}},
	}
	l := Compute(tl, Default(), monoMeasurer)
	if w := l.Rows[0].Jobs[0].Rect.W; !(w < 0) {
		t.Errorf("inverted job width = %v, want negative", w)
	}
}

func TestLabelColumnWidthOrderIndependent(t *testing.T) {
	nodes := []timeline.Node{
		{Name: "short", Type: "a"},
		{Name: "a much longer name", Type: "async"},
		{Name: "mid", Type: "sync"},
	}
	reversed := []timeline.Node{nodes[2], nodes[1], nodes[0]}

	w1 := LabelColumnWidth(&timeline.Timeline{Nodes: nodes}, Default(), monoMeasurer)
	w2 := LabelColumnWidth(&timeline.Timeline{Nodes: reversed}, Default(), monoMeasurer)
	if w1 != w2 {
		t.Errorf("width depends on order: %v vs %v", w1, w2)
	}

	// "a much longer name (async)" has 26 runes: 6*26-1 = 155 ink.
	assertApprox(t, "width", w1, 155+30)
}

func TestLabelColumnWidthNoNodes(t *testing.T) {
	w := LabelColumnWidth(&timeline.Timeline{}, Default(), monoMeasurer)
	assertApprox(t, "width", w, 30)
}

func TestComputeDeterministic(t *testing.T) {
	a, err := MarshalLayout(Compute(exampleTimeline(), Default(), monoMeasurer))
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalLayout(Compute(exampleTimeline(), Default(), monoMeasurer))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("layout is not deterministic")
	}
}

func TestMarshalLayoutRoundTrip(t *testing.T) {
	l := Compute(exampleTimeline(), Default(), monoMeasurer)
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Theme != l.Theme {
		t.Errorf("theme = %+v, want %+v", got.Theme, l.Theme)
	}
	if got.Rows[0].Jobs[0].Caption.Text != "1" || got.Policy != PolicyAutoFit {
		t.Errorf("round trip lost data: %+v", got)
	}
}
