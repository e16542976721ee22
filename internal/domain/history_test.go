package domain

import (
	"testing"
	"time"
)

func TestSeries_CapNeverExceeded(t *testing.T) {
	s := NewSeries(50)
	base := time.Now()

	for i := 0; i < 500; i++ {
		s.Append(base.Add(time.Duration(i)*time.Second), float64(i))
	}

	if s.Len() != 50 {
		t.Errorf("Expected 50 points, got %d", s.Len())
	}

	pts := s.Points()
	if pts[0].Value != 450 {
		t.Errorf("Oldest point should be evicted first, got %v", pts[0].Value)
	}
	if pts[len(pts)-1].Value != 499 {
		t.Errorf("Expected last value 499, got %v", pts[len(pts)-1].Value)
	}
}

func TestSeries_MinMaxAfterEviction(t *testing.T) {
	s := NewSeries(3)
	base := time.Now()

	s.Append(base, 10)
	s.Append(base.Add(time.Second), 1)
	s.Append(base.Add(2*time.Second), 5)

	if s.Min() != 1 || s.Max() != 10 {
		t.Errorf("Expected min=1 max=10, got min=%v max=%v", s.Min(), s.Max())
	}

	// Evicts the 10; max must be recomputed from the survivors.
	s.Append(base.Add(3*time.Second), 4)
	if s.Min() != 1 || s.Max() != 5 {
		t.Errorf("Expected min=1 max=5 after eviction, got min=%v max=%v", s.Min(), s.Max())
	}

	// Evicts the 1.
	s.Append(base.Add(4*time.Second), 2)
	if s.Min() != 2 || s.Max() != 5 {
		t.Errorf("Expected min=2 max=5 after eviction, got min=%v max=%v", s.Min(), s.Max())
	}
}

func TestSeries_DuplicateTimestampsAllowed(t *testing.T) {
	s := NewSeries(10)
	now := time.Now()

	s.Append(now, 1)
	s.Append(now, 2)

	if s.Len() != 2 {
		t.Errorf("Expected 2 points with duplicate timestamps, got %d", s.Len())
	}
}

func TestSeries_Last(t *testing.T) {
	s := NewSeries(10)
	if _, ok := s.Last(); ok {
		t.Error("Empty series should have no last point")
	}

	s.Append(time.Now(), 42)
	p, ok := s.Last()
	if !ok || p.Value != 42 {
		t.Errorf("Expected last value 42, got %v", p.Value)
	}
}
