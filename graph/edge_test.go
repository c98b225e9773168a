package graph

import "testing"

func TestEdge_UnconditionalMatchesAnyContext(t *testing.T) {
	e := Edge{From: "a", To: "b"}
	if e.Condition != nil {
		t.Fatal("expected nil condition for unconditional edge")
	}
}

func TestEdge_ConditionEvaluatesAgainstContext(t *testing.T) {
	e := Edge{
		From: "a",
		To:   "b",
		Condition: func(c *Context) bool {
			v, _ := GetSync[bool](c, "flag")
			return v
		},
	}

	c := NewContext()
	if e.Condition(c) {
		t.Error("expected condition false when flag unset")
	}

	_ = c.Set("flag", true)
	if !e.Condition(c) {
		t.Error("expected condition true once flag set")
	}
}
