package dicom_test

import (
	"testing"

	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/odincare/dicomancer/dicomtest"
	"github.com/odincare/dicomancer/dicomuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instanceFile(patientID, studyUID, seriesUID, sopUID string) []byte {
	var elems []dicomtest.Elem
	for _, e := range dicomtest.Instance(patientID, studyUID, seriesUID, sopUID) {
		if len(e.Values) == 1 && e.Values[0] == "" {
			continue
		}
		elems = append(elems, e)
	}
	return dicomtest.New(dicomuid.ExplicitVRLittleEndian, elems...).Bytes()
}

func instanceDataSet(t *testing.T, patientID, studyUID, seriesUID, sopUID string) *dicom.DataSet {
	return mustRead(t, instanceFile(patientID, studyUID, seriesUID, sopUID), dicom.ReadOptions{})
}

func TestHierarchyGroupsInstances(t *testing.T) {
	h := dicom.NewHierarchy()
	h.Insert(instanceDataSet(t, "P1", "S1", "SE1", "I1"), "a.dcm")
	h.Insert(instanceDataSet(t, "P1", "S1", "SE1", "I2"), "b.dcm")
	h.Insert(instanceDataSet(t, "P1", "S1", "SE2", "I3"), "c.dcm")
	h.Insert(instanceDataSet(t, "P2", "S2", "SE3", "I4"), "d.dcm")

	patients := h.Patients()
	require.Len(t, patients, 2)
	p1 := patients[0]
	assert.Equal(t, dicom.PatientLevel, p1.Level)
	assert.Equal(t, "P1", p1.ID)
	assert.Equal(t, "PatientID: P1", p1.Label)
	require.Len(t, p1.Children, 1)

	study := p1.Children[0]
	assert.Equal(t, "StudyInstanceUID: S1", study.Label)
	require.Len(t, study.Children, 2)
	assert.Equal(t, "SE1", study.Children[0].ID)
	assert.Equal(t, "SE2", study.Children[1].ID)

	leaves := study.Children[0].Children
	require.Len(t, leaves, 2)
	assert.Equal(t, dicom.InstanceLevel, leaves[0].Level)
	assert.Equal(t, "IMAGE", leaves[0].Level.String())
	assert.Equal(t, "a.dcm", leaves[0].Source)
	assert.Equal(t, "b.dcm", leaves[1].Source)
	assert.NotNil(t, leaves[1].DataSet)

	// 2 patients, 2 studies, 3 series, 4 instances.
	assert.Equal(t, 11, h.NodeCount())
}

func TestHierarchyReinsertIsIdempotent(t *testing.T) {
	h := dicom.NewHierarchy()
	first := instanceDataSet(t, "P1", "S1", "SE1", "I1")
	h.Insert(first, "a.dcm")
	count := h.NodeCount()

	second := instanceDataSet(t, "P1", "S1", "SE1", "I1")
	leaf := h.Insert(second, "a.dcm")
	assert.Equal(t, count, h.NodeCount())
	assert.Same(t, second, leaf.DataSet)
}

func TestHierarchyUnknownIdentifiers(t *testing.T) {
	h := dicom.NewHierarchy()
	ds := instanceDataSet(t, "", "", "", "")
	assert.Equal(t, [4]string{dicom.UnknownID, dicom.UnknownID, dicom.UnknownID, dicom.UnknownID}, dicom.InstancePath(ds))

	h.Insert(ds, "x.dcm")
	h.Insert(instanceDataSet(t, "", "", "", ""), "y.dcm")
	patients := h.Patients()
	require.Len(t, patients, 1)
	assert.Equal(t, "PatientID: unknown", patients[0].Label)

	series := patients[0].Children[0].Children[0]
	// Instances without SOPInstanceUID stay apart.
	require.Len(t, series.Children, 2)
	assert.Equal(t, dicom.UnknownID, series.Children[0].ID)
	assert.Equal(t, "x.dcm", series.Children[0].Source)
	assert.Equal(t, "y.dcm", series.Children[1].Source)
}

func TestHierarchyWalk(t *testing.T) {
	h := dicom.NewHierarchy()
	h.Insert(instanceDataSet(t, "P1", "S1", "SE1", "I1"), "a.dcm")
	h.Insert(instanceDataSet(t, "P2", "S2", "SE2", "I2"), "b.dcm")

	var visited []string
	h.Walk(func(n *dicom.Node, depth int) bool {
		visited = append(visited, n.ID)
		assert.Equal(t, int(n.Level), depth)
		return n.ID != "P2"
	})
	assert.Equal(t, []string{"P1", "S1", "SE1", "I1", "P2"}, visited)
}

func TestHierarchyTrimsPadding(t *testing.T) {
	ds := mustRead(t, dicomtest.New(dicomuid.ExplicitVRLittleEndian,
		dicomtest.Str(dicomtag.SOPInstanceUID, "1.2.3"),
		dicomtest.Str(dicomtag.PatientID, " P9 "),
	).Bytes(), dicom.ReadOptions{})
	path := dicom.InstancePath(ds)
	assert.Equal(t, "P9", path[dicom.PatientLevel])
	assert.Equal(t, "1.2.3", path[dicom.InstanceLevel])
}
