package entity

import (
	"math/rand"
	"testing"
)

func TestHierarchy_AddObservation(t *testing.T) {
	h := NewHierarchy()

	h.AddObservation("acme", "site-a", "area-1", "press-01", "oee", 10)
	h.AddObservation("acme", "site-a", "area-1", "press-01", "temperature", 5)
	h.AddObservation("acme", "site-a", "area-2", "mill-01", "oee", 7)
	h.AddObservation("acme", "site-b", "area-1", "press-02", "oee", 3)

	ent := h.Enterprises["acme"]
	if ent == nil {
		t.Fatal("expected enterprise node")
	}
	if ent.TotalCount != 25 {
		t.Errorf("expected enterprise total 25, got %d", ent.TotalCount)
	}

	siteA := ent.Sites["site-a"]
	if siteA == nil || siteA.TotalCount != 22 {
		t.Fatalf("expected site-a total 22, got %+v", siteA)
	}

	machine := siteA.Areas["area-1"].Machines["press-01"]
	if machine.TotalCount != 15 {
		t.Errorf("expected machine total 15, got %d", machine.TotalCount)
	}
	if len(machine.Measurements) != 2 {
		t.Errorf("expected 2 measurements, got %v", machine.Measurements)
	}

	// Duplicate measurement name is not appended twice.
	h.AddObservation("acme", "site-a", "area-1", "press-01", "oee", 1)
	if len(machine.Measurements) != 2 {
		t.Errorf("expected measurement set semantics, got %v", machine.Measurements)
	}
}

// Node totals must equal the sum of their children's totals no matter how
// observations are distributed across the tree.
func TestHierarchy_SumInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHierarchy()

	enterprises := []string{"acme", "globex", "initech"}
	sites := []string{"site-a", "site-b"}
	areas := []string{"area-1", "area-2", "area-3"}
	machines := []string{"m-01", "m-02"}
	measurements := []string{"oee", "temperature", "good_parts"}

	var grandTotal int64
	for i := 0; i < 500; i++ {
		count := int64(rng.Intn(100) + 1)
		grandTotal += count
		h.AddObservation(
			enterprises[rng.Intn(len(enterprises))],
			sites[rng.Intn(len(sites))],
			areas[rng.Intn(len(areas))],
			machines[rng.Intn(len(machines))],
			measurements[rng.Intn(len(measurements))],
			count,
		)
	}

	var entSum int64
	for _, ent := range h.Enterprises {
		entSum += ent.TotalCount

		var siteSum int64
		for _, site := range ent.Sites {
			siteSum += site.TotalCount

			var areaSum int64
			for _, area := range site.Areas {
				areaSum += area.TotalCount

				var machineSum int64
				for _, machine := range area.Machines {
					machineSum += machine.TotalCount
				}
				if machineSum != area.TotalCount {
					t.Fatalf("area total %d != machine sum %d", area.TotalCount, machineSum)
				}
			}
			if areaSum != site.TotalCount {
				t.Fatalf("site total %d != area sum %d", site.TotalCount, areaSum)
			}
		}
		if siteSum != ent.TotalCount {
			t.Fatalf("enterprise total %d != site sum %d", ent.TotalCount, siteSum)
		}
	}
	if entSum != grandTotal {
		t.Fatalf("grand total %d != enterprise sum %d", grandTotal, entSum)
	}
}

func TestHierarchy_CloneIsDeep(t *testing.T) {
	h := NewHierarchy()
	h.AddObservation("acme", "site-a", "area-1", "press-01", "oee", 10)

	clone := h.Clone()
	clone.AddObservation("acme", "site-a", "area-1", "press-01", "temperature", 5)

	original := h.Enterprises["acme"].Sites["site-a"].Areas["area-1"].Machines["press-01"]
	if original.TotalCount != 10 {
		t.Errorf("mutating clone changed original total: %d", original.TotalCount)
	}
	if len(original.Measurements) != 1 {
		t.Errorf("mutating clone changed original measurements: %v", original.Measurements)
	}
}
