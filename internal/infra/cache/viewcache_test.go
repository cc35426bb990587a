package cache

import (
	"strings"
	"testing"

	"github.com/agrovest/agrovest/internal/domain"
)

func TestCriteriaKeyStable(t *testing.T) {
	criteria := domain.NewSearchCriteria()
	criteria.Country = "Kenya"
	roi := 8.5
	criteria.MinROI = &roi

	first := criteriaKey(criteria)
	second := criteriaKey(criteria)
	if first != second {
		t.Fatalf("same criteria produced different keys: %s vs %s", first, second)
	}

	// equal by value, not by identity
	other := domain.NewSearchCriteria()
	other.Country = "Kenya"
	otherROI := 8.5
	other.MinROI = &otherROI
	if criteriaKey(other) != first {
		t.Fatalf("value-equal criteria produced different keys")
	}
}

func TestCriteriaKeyDistinguishesCriteria(t *testing.T) {
	base := domain.NewSearchCriteria()

	variants := []domain.SearchCriteria{
		{},        // zero value, no open-only default
		base,      // default open-only
		func() domain.SearchCriteria { c := base; c.Country = "Kenya"; return c }(),
		func() domain.SearchCriteria { c := base; c.Country = "Ghana"; return c }(),
		func() domain.SearchCriteria { c := base; c.OrganicOnly = true; return c }(),
		func() domain.SearchCriteria { c := base; funded := true; c.FundedOnly = &funded; return c }(),
	}

	seen := map[string]int{}
	for i, criteria := range variants {
		key := criteriaKey(criteria)
		if prev, dup := seen[key]; dup {
			t.Fatalf("criteria %d and %d collided on key %s", prev, i, key)
		}
		seen[key] = i
	}
}

func TestCriteriaKeyMemcachedSafe(t *testing.T) {
	criteria := domain.NewSearchCriteria()
	criteria.CropName = "some crop name with spaces and ünïcode that must not leak into the key"

	key := criteriaKey(criteria)
	if len(key) > 250 {
		t.Fatalf("key exceeds memcached limit: %d bytes", len(key))
	}
	if strings.ContainsAny(key, " \t\n") {
		t.Fatalf("key contains whitespace: %q", key)
	}
	if !strings.HasPrefix(key, "agrovest:tokview:") {
		t.Fatalf("unexpected key namespace: %q", key)
	}
}
