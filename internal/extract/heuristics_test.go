package extract

import "testing"

func TestSuffixMatcher(t *testing.T) {
	match := SuffixMatcher("Entity", " dto ", "")
	for name, want := range map[string]bool{
		"UserEntity":    true,
		"userentity":    true,
		"CreateUserDto": true,
		"Entityish":     false,
		"":              false,
	} {
		if got := match(name); got != want {
			t.Errorf("match(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDefaultHeuristics(t *testing.T) {
	h := DefaultHeuristics()
	if !h.modelLike("UserModel") || !h.modelLike("OrderEntity") || h.modelLike("UsersService") {
		t.Error("unexpected modelLike results")
	}
	if !h.IsRepository("userRepository") || !h.IsRepository("accountRepo") || h.IsRepository("mailer") {
		t.Error("unexpected IsRepository results")
	}
}

func TestNewHeuristicsOverrides(t *testing.T) {
	h := NewHeuristics([]string{"Record"}, []string{}, nil)
	if !h.IsModel("UserRecord") || h.IsModel("UserModel") {
		t.Error("model suffixes not replaced")
	}
	if h.IsEntity("UserEntity") {
		t.Error("empty entity list should match nothing")
	}
	if !h.IsRepository("userRepository") {
		t.Error("nil repository list should keep defaults")
	}
}
