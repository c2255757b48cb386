package dicom_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	dicom "github.com/odincare/dicomancer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFiles(files map[string][]byte) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return data, nil
	}
}

func TestImporterKeepsSubmissionOrder(t *testing.T) {
	truncated := instanceFile("P3", "S3", "SE3", "I3")
	files := map[string][]byte{
		"1.dcm":     instanceFile("P1", "S1", "SE1", "I1"),
		"2.dcm":     instanceFile("P2", "S2", "SE2", "I2"),
		"3.dcm":     truncated[:len(truncated)-2],
		"notes.txt": []byte("not an image"),
		"4.dcm":     instanceFile("P1", "S1", "SE1", "I4"),
	}
	paths := []string{"1.dcm", "2.dcm", "missing.dcm", "3.dcm", "notes.txt", "4.dcm"}

	for _, workers := range []int{1, 3, 16} {
		h := dicom.NewHierarchy()
		im := dicom.NewImporter(h, dicom.ReadOptions{}, workers)
		im.ReadFile = fakeFiles(files)
		outcomes := im.Import(context.Background(), paths)

		require.Len(t, outcomes, len(paths))
		for i, o := range outcomes {
			assert.Equal(t, paths[i], o.Path)
		}
		assert.False(t, outcomes[0].Failed())
		assert.True(t, outcomes[2].Failed())
		assert.False(t, outcomes[3].Failed(), "partial data sets are still imported")
		assert.True(t, outcomes[4].Failed())

		assert.Equal(t, []dicom.ImportFailure{
			{Path: "missing.dcm", Reason: "file not found"},
			{Path: "3.dcm", Reason: "partially parsed: truncated file"},
			{Path: "notes.txt", Reason: "not a DICOM file"},
		}, dicom.Failures(outcomes))

		var patients []string
		for _, p := range h.Patients() {
			patients = append(patients, p.ID)
		}
		assert.Equal(t, []string{"P1", "P2", "P3"}, patients)
		series := h.Patients()[0].Children[0].Children[0]
		require.Len(t, series.Children, 2)
		assert.Equal(t, "1.dcm", series.Children[0].Source)
		assert.Equal(t, "4.dcm", series.Children[1].Source)
	}
}

func TestImporterFilters(t *testing.T) {
	files := map[string][]byte{
		"1.dcm": instanceFile("P1", "S1", "SE1", "I1"),
		"2.dcm": instanceFile("P2", "S2", "SE2", "I2"),
		"3.dcm": instanceFile("P1", "S1", "SE1", "I3"),
	}
	paths := []string{"1.dcm", "2.dcm", "missing.dcm", "3.dcm"}
	filter, err := dicom.ParseFilter("PatientID=P1")
	require.NoError(t, err)

	h := dicom.NewHierarchy()
	im := dicom.NewImporter(h, dicom.ReadOptions{}, 2)
	im.ReadFile = fakeFiles(files)
	im.Filters = []*dicom.Element{filter}
	outcomes := im.Import(context.Background(), paths)

	require.Len(t, outcomes, len(paths))
	assert.False(t, outcomes[0].Filtered)
	assert.True(t, outcomes[1].Filtered)
	assert.False(t, outcomes[1].Failed())
	assert.False(t, outcomes[2].Filtered, "unreadable files are reported, not filtered")
	assert.True(t, outcomes[2].Failed())
	assert.False(t, outcomes[3].Filtered)

	require.Len(t, h.Patients(), 1)
	assert.Equal(t, "P1", h.Patients()[0].ID)
	series := h.Patients()[0].Children[0].Children[0]
	require.Len(t, series.Children, 2)
	assert.Equal(t, "1.dcm", series.Children[0].Source)
	assert.Equal(t, "3.dcm", series.Children[1].Source)
}

func TestImporterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	im := dicom.NewImporter(dicom.NewHierarchy(), dicom.ReadOptions{}, 2)
	im.ReadFile = fakeFiles(map[string][]byte{"a": instanceFile("P1", "S1", "SE1", "I1")})
	paths := []string{"a", "a", "a", "a", "a", "a"}
	outcomes := im.Import(ctx, paths)
	require.Len(t, outcomes, len(paths))
	for _, o := range outcomes {
		if o.Err != nil {
			assert.True(t, errors.Is(o.Err, context.Canceled))
		}
	}
}

func TestImporterNoPaths(t *testing.T) {
	im := dicom.NewImporter(dicom.NewHierarchy(), dicom.ReadOptions{}, 0)
	assert.Empty(t, im.Import(context.Background(), nil))
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.dcm", "a", "sub/c.dcm", ".hidden", ".git/d"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	files, err := dicom.ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "b.dcm"),
		filepath.Join(root, "sub", "c.dcm"),
	}, files)
}
