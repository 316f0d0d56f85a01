package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/shuhei10/whquiz/internal/screen"
)

// recordScreen records lifecycle calls for assertions.
type recordScreen struct {
	name     string
	initRuns int
	lastMsg  tea.Msg
}

func (s *recordScreen) Init() tea.Cmd {
	s.initRuns++
	return nil
}

func (s *recordScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.lastMsg = msg
	return s, nil
}

func (s *recordScreen) View(int, int) string { return s.name }
func (s *recordScreen) Title() string        { return s.name }

func active(t *testing.T, r *Router) *recordScreen {
	t.Helper()
	s, ok := r.Active().(*recordScreen)
	if !ok {
		t.Fatalf("active screen is %T", r.Active())
	}
	return s
}

func TestPushAndPop(t *testing.T) {
	home := &recordScreen{name: "home"}
	r := New(home)

	chapters := &recordScreen{name: "chapters"}
	r.Push(chapters)

	if r.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", r.Depth())
	}
	if got := active(t, r); got != chapters || got.initRuns != 1 {
		t.Errorf("active = %s (init %d), want chapters init once", got.name, got.initRuns)
	}

	r.Pop()
	if r.Depth() != 1 || active(t, r) != home {
		t.Errorf("after pop: depth %d active %s, want home at depth 1", r.Depth(), active(t, r).name)
	}

	// The bottom screen never pops.
	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("Depth = %d after popping the bottom, want 1", r.Depth())
	}
}

func TestReplaceKeepsDepth(t *testing.T) {
	home := &recordScreen{name: "home"}
	r := New(home)
	r.Push(&recordScreen{name: "quiz"})

	result := &recordScreen{name: "result"}
	r.Replace(result)

	if r.Depth() != 2 {
		t.Errorf("Depth = %d after replace, want 2", r.Depth())
	}
	if got := active(t, r); got != result || got.initRuns != 1 {
		t.Errorf("active = %s (init %d), want result init once", got.name, got.initRuns)
	}

	// Popping lands on the screen below the replaced one.
	r.Pop()
	if active(t, r) != home {
		t.Errorf("after pop: active %s, want home", active(t, r).name)
	}
}

func TestReplaceOnEmptyStackPushes(t *testing.T) {
	r := &Router{}

	s := &recordScreen{name: "only"}
	r.Replace(s)

	if r.Depth() != 1 || active(t, r) != s {
		t.Errorf("Depth = %d active %v, want the screen pushed", r.Depth(), r.Active())
	}
	if s.initRuns != 1 {
		t.Errorf("initRuns = %d, want 1", s.initRuns)
	}
}

func TestUpdateRoutesNavigationMessages(t *testing.T) {
	r := New(&recordScreen{name: "home"})

	chapters := &recordScreen{name: "chapters"}
	r.Update(PushScreenMsg{Screen: chapters})
	if r.Depth() != 2 || active(t, r) != chapters {
		t.Fatalf("PushScreenMsg: depth %d active %s", r.Depth(), active(t, r).name)
	}

	result := &recordScreen{name: "result"}
	r.Update(ReplaceScreenMsg{Screen: result})
	if r.Depth() != 2 || active(t, r) != result || result.initRuns != 1 {
		t.Fatalf("ReplaceScreenMsg: depth %d active %s init %d",
			r.Depth(), active(t, r).name, result.initRuns)
	}

	r.Update(PopScreenMsg{})
	if r.Depth() != 1 {
		t.Errorf("PopScreenMsg: depth %d, want 1", r.Depth())
	}
}

func TestUpdateForwardsToActiveOnly(t *testing.T) {
	home := &recordScreen{name: "home"}
	r := New(home)
	chapters := &recordScreen{name: "chapters"}
	r.Push(chapters)

	msg := tea.KeyPressMsg{Code: 'j', Text: "j"}
	r.Update(msg)

	if chapters.lastMsg == nil {
		t.Error("active screen never saw the message")
	}
	if home.lastMsg != nil {
		t.Error("covered screen must not receive messages")
	}
}
