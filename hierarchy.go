package dicom

import (
	"sync"

	"github.com/odincare/dicomancer/dicomlog"
	"github.com/odincare/dicomancer/dicomtag"
)

// UnknownID replaces a missing Patient ID or UID in the hierarchy.
const UnknownID = "unknown"

// Level is the depth of a Node in the hierarchy.
type Level int

const (
	PatientLevel Level = iota
	StudyLevel
	SeriesLevel
	InstanceLevel
)

// levelTags are the identifying attributes of each Level.
var levelTags = [...]dicomtag.Tag{
	PatientLevel:  dicomtag.PatientID,
	StudyLevel:    dicomtag.StudyInstanceUID,
	SeriesLevel:   dicomtag.SeriesInstanceUID,
	InstanceLevel: dicomtag.SOPInstanceUID,
}

func (l Level) String() string {
	switch l {
	case PatientLevel:
		return "PATIENT"
	case StudyLevel:
		return "STUDY"
	case SeriesLevel:
		return "SERIES"
	case InstanceLevel:
		return "IMAGE"
	}
	return "?"
}

// Node is one entry of the Patient → Study → Series → Instance tree.
// Instance nodes carry the DataSet and the path it was read from instead of
// children.
type Node struct {
	Level    Level
	ID       string
	Label    string
	Children []*Node
	DataSet  *DataSet
	Source   string

	// key → child, for find-or-create.
	index map[string]*Node
}

func newNode(level Level, id string) *Node {
	return &Node{
		Level: level,
		ID:    id,
		Label: dicomtag.Alias(levelTags[level]) + ": " + id,
		index: make(map[string]*Node),
	}
}

func (n *Node) child(level Level, id, key string) (*Node, bool) {
	if c, ok := n.index[key]; ok {
		return c, false
	}
	c := newNode(level, id)
	n.index[key] = c
	n.Children = append(n.Children, c)
	return c, true
}

// Hierarchy groups data sets by Patient ID, Study/Series/SOP Instance UID.
// Inserts are serialised; readers must wait until the import batch is done.
type Hierarchy struct {
	mu   sync.Mutex
	root *Node
}

// NewHierarchy returns an empty tree.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{root: newNode(PatientLevel, "")}
}

// InstancePath returns the four identifiers of ds, UnknownID for absent ones.
func InstancePath(ds *DataSet) [4]string {
	var path [4]string
	for level, tag := range levelTags {
		id, ok := ds.Text(tag)
		if !ok {
			id = UnknownID
		}
		path[level] = id
	}
	return path
}

// Insert finds or creates the path of ds and attaches it as an Instance leaf.
// Inserting an instance whose path already exists replaces the leaf's
// DataSet. An instance without SOPInstanceUID is keyed by its source so that
// distinct files never collapse into one leaf.
func (h *Hierarchy) Insert(ds *DataSet, source string) *Node {
	path := InstancePath(ds)
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.root
	for level := PatientLevel; level <= InstanceLevel; level++ {
		key := path[level]
		if level == InstanceLevel && key == UnknownID {
			key = UnknownID + "\x00" + source
		}
		var created bool
		n, created = n.child(level, path[level], key)
		if created {
			dicomlog.Event(dicomlog.LevelTrace, "dicom: hierarchy node created", dicomlog.Fields{
				"level": level.String(), "id": path[level],
			})
		}
	}
	n.DataSet = ds
	n.Source = source
	return n
}

// Patients returns the top-level nodes in first-insertion order.
func (h *Hierarchy) Patients() []*Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Node(nil), h.root.Children...)
}

// Walk visits every node depth first, in insertion order. Returning false
// from fn skips the node's children.
func (h *Hierarchy) Walk(fn func(n *Node, depth int) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.Children {
			if fn(c, depth) {
				walk(c, depth+1)
			}
		}
	}
	walk(h.root, 0)
}

// NodeCount is the number of nodes at every level.
func (h *Hierarchy) NodeCount() int {
	count := 0
	h.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}
