package drive

import "time"

// Node types reported by the service.
const (
	TypeFolder = "FOLDER"
	TypeFile   = "FILE"
	TypeApp    = "APP_LIBRARY"
)

// Node is one entry of the drive tree. Folder nodes carry their children
// in Items after a fetch.
type Node struct {
	DrivewsID    string    `json:"drivewsid"`
	DocwsID      string    `json:"docwsid,omitempty"`
	Zone         string    `json:"zone,omitempty"`
	Name         string    `json:"name"`
	Extension    string    `json:"extension,omitempty"`
	Type         string    `json:"type"`
	Size         int64     `json:"size,omitempty"`
	Etag         string    `json:"etag,omitempty"`
	DateModified time.Time `json:"dateModified,omitzero"`
	DateChanged  time.Time `json:"dateChanged,omitzero"`
	Items        []Node    `json:"items,omitempty"`
}

// IsFolder reports whether the node can have children.
func (n *Node) IsFolder() bool {
	return n.Type == TypeFolder || n.Type == TypeApp
}

// FullName returns the file name including its extension.
func (n *Node) FullName() string {
	if n.Extension == "" {
		return n.Name
	}
	return n.Name + "." + n.Extension
}

// Child returns the direct child with the given full name, nil when no
// such child exists in the fetched items.
func (n *Node) Child(name string) *Node {
	for i := range n.Items {
		if n.Items[i].FullName() == name {
			return &n.Items[i]
		}
	}
	return nil
}
