package obsio

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/signalsfoundry/gnssvod/model"
)

func sampleTable(t *testing.T, withStations bool) *model.Table {
	t.Helper()
	e1 := time.Date(2023, 8, 1, 6, 0, 0, 0, time.UTC)
	e2 := e1.Add(30 * time.Second)
	tbl, err := model.NewTable([]time.Time{e1, e2}, []string{"G01", "E02"})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if err := tbl.AddColumn("S1", []float64{44.25, model.Missing()}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := tbl.AddColumn("Elevation", []float64{30, 60}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if withStations {
		tbl.Stations = []string{"twr", "grn"}
	}
	return tbl
}

func TestCSVRoundTrip(t *testing.T) {
	for _, withStations := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "obs.csv")
		want := sampleTable(t, withStations)
		if err := WriteTable(path, want); err != nil {
			t.Fatalf("WriteTable: %v", err)
		}

		got, err := ReadTable(path)
		if err != nil {
			t.Fatalf("ReadTable: %v", err)
		}
		if got.HasStations() != withStations {
			t.Fatalf("HasStations = %v, want %v", got.HasStations(), withStations)
		}
		if !reflect.DeepEqual(got.SVs, want.SVs) {
			t.Errorf("SVs = %v, want %v", got.SVs, want.SVs)
		}
		if !reflect.DeepEqual(got.ColumnNames(), want.ColumnNames()) {
			t.Errorf("columns = %v, want %v", got.ColumnNames(), want.ColumnNames())
		}
		for i := range want.Epochs {
			if !got.Epochs[i].Equal(want.Epochs[i]) {
				t.Errorf("epoch %d = %v, want %v", i, got.Epochs[i], want.Epochs[i])
			}
		}
		s1, _ := got.Column("S1")
		if s1[0] != 44.25 {
			t.Errorf("S1[0] = %v, want 44.25", s1[0])
		}
		if !model.IsMissing(s1[1]) {
			t.Errorf("S1[1] = %v, want missing round-tripped through an empty cell", s1[1])
		}
	}
}

func TestWriteTableCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "obs.csv")
	if err := WriteTable(path, sampleTable(t, false)); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}

func TestExtentScansOnlyEpochs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := WriteTable(path, sampleTable(t, false)); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	min, max, err := Extent(path)
	if err != nil {
		t.Fatalf("Extent: %v", err)
	}
	wantMin := time.Date(2023, 8, 1, 6, 0, 0, 0, time.UTC)
	if !min.Equal(wantMin) || !max.Equal(wantMin.Add(30*time.Second)) {
		t.Errorf("Extent = (%v, %v), want (%v, %v)", min, max, wantMin, wantMin.Add(30*time.Second))
	}
}

func TestReadTableRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("Time,Sat,S1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadTable(path); err == nil {
		t.Error("expected error for an unrecognized header")
	}
	if _, _, err := Extent(path); err == nil {
		t.Error("expected error from Extent for an unrecognized header")
	}
}

func TestExtentEmptyFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("Epoch,SV,S1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := Extent(path); err == nil {
		t.Error("expected error for a file without rows")
	}
}
