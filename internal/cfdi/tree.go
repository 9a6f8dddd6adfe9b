package cfdi

import "encoding/xml"

// CFDI 4.0 namespaces.
const (
	NSCFDI = "http://www.sat.gob.mx/cfd/4"
	NSTFD  = "http://www.sat.gob.mx/TimbreFiscalDigital"
	NSPago = "http://www.sat.gob.mx/Pagos20"
)

// Node is one element of a parsed document: name, attributes, and child
// elements, namespace-qualified. A tree is owned by the worker that parsed
// it and is discarded after extraction.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr
	Children []Node
}

// UnmarshalXML builds the subtree rooted at start. Character data is
// dropped; CFDI carries everything in attributes.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	n.Attrs = start.Attr
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child Node
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.EndElement:
			return nil
		}
	}
}

// Attr returns the value of the named attribute, or "" if absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// Find returns the first direct child with the given namespace and local
// name, or nil.
func (n *Node) Find(space, local string) *Node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Space == space && c.XMLName.Local == local {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given namespace and local name.
func (n *Node) FindAll(space, local string) []*Node {
	var out []*Node
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Space == space && c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// FindDeep returns the first descendant with the given namespace and local
// name, searching depth-first.
func (n *Node) FindDeep(space, local string) *Node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Space == space && c.XMLName.Local == local {
			return c
		}
		if found := c.FindDeep(space, local); found != nil {
			return found
		}
	}
	return nil
}
