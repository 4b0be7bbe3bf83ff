package history

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestAppendCapsAtTenFIFO(t *testing.T) {
	s := NewStore()
	for i := 1; i <= 12; i++ {
		s.Append("sess", Turn{Question: fmt.Sprintf("q%d", i)})
	}

	turns := s.Turns("sess")
	if len(turns) != 10 {
		t.Fatalf("retained %d turns, want 10", len(turns))
	}
	if turns[0].Question != "q3" {
		t.Errorf("oldest retained = %q, want q3 (q1, q2 evicted)", turns[0].Question)
	}
	if turns[9].Question != "q12" {
		t.Errorf("newest retained = %q, want q12", turns[9].Question)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore()
	s.Append("a", Turn{Question: "from a"})

	if got := s.Turns("b"); len(got) != 0 {
		t.Errorf("session b sees %d turns, want 0", len(got))
	}
}

func TestRenderLastFiveOldestFirst(t *testing.T) {
	s := NewStore()
	for i := 1; i <= 8; i++ {
		s.Append("sess", Turn{
			Question:  fmt.Sprintf("q%d", i),
			Narrative: fmt.Sprintf("a%d", i),
		})
	}

	rendered := s.Render("sess")
	if strings.Contains(rendered, "q3") {
		t.Error("render should only include the 5 most recent turns")
	}
	if !strings.Contains(rendered, "User: q4\nAgent: a4") {
		t.Errorf("rendered history missing oldest included turn:\n%s", rendered)
	}
	if strings.Index(rendered, "q4") > strings.Index(rendered, "q8") {
		t.Error("turns must render oldest first")
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := NewStore().Render("nobody"); got != "None" {
		t.Errorf("Render on empty session = %q, want None", got)
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.Append("sess", Turn{Question: "q"})
	s.Reset("sess")
	if got := s.Turns("sess"); len(got) != 0 {
		t.Errorf("after reset got %d turns, want 0", len(got))
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append("shared", Turn{Question: fmt.Sprintf("q%d", i)})
			s.Append(fmt.Sprintf("own-%d", i), Turn{Question: "x"})
		}(i)
	}
	wg.Wait()

	if got := s.Turns("shared"); len(got) != 10 {
		t.Errorf("shared session retained %d turns, want 10", len(got))
	}
	if got := s.Turns("own-7"); len(got) != 1 {
		t.Errorf("own-7 retained %d turns, want 1", len(got))
	}
}
