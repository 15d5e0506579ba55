package services

import (
	"context"
	"fmt"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/storage/memory"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func seedEntity(t *testing.T, st *memory.Store, id string, year int, status core.EntityStatus) core.Entity {
	t.Helper()
	e := core.Entity{ID: id, Kind: core.KindEvent, Name: "Entity " + id, Year: year, Status: status}
	if err := st.SaveEntity(context.Background(), e); err != nil {
		t.Fatalf("SaveEntity: %v", err)
	}
	return e
}

func line(entityID, category string, typ core.LineType, allocated int64, actual *int64) core.BudgetLine {
	l := core.BudgetLine{EntityID: entityID, Category: category, Type: typ, Allocated: core.Cents(allocated)}
	if actual != nil {
		l.Actual = core.Cents(*actual).Ptr()
	}
	return l
}

func cents(v int64) *int64 { return &v }
