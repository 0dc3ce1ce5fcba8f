// Package operators provides the operator handlers dispatched by the graph
// executor, including the Yield suspension point.
package operators

// Node represents one operation node in a graph.
// This is a local copy of the relevant IR fields to keep the operators
// package free of a dependency on the graph package.
type Node struct {
	Name       string      // Node name (optional)
	OpType     string      // Operation type (e.g., "Add", "Yield")
	Inputs     []string    // Input value names
	Outputs    []string    // Output value names
	Attributes []Attribute // Operation attributes
}

// Attribute represents a node attribute.
type Attribute struct {
	Name   string    // Attribute name
	F      float32   // FLOAT value
	I      int64     // INT value
	S      string    // STRING value
	Floats []float32 // FLOATS array
	Ints   []int64   // INTS array
}

// HasAttr reports whether the node declares an attribute.
func HasAttr(node *Node, name string) bool {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return true
		}
	}
	return false
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].I
		}
	}
	return defaultVal
}

// GetAttrFloat returns a float attribute or default value.
func GetAttrFloat(node *Node, name string, defaultVal float32) float32 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].F
		}
	}
	return defaultVal
}

// GetAttrString returns a string attribute or default value.
func GetAttrString(node *Node, name, defaultVal string) string {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].S
		}
	}
	return defaultVal
}

// GetAttrInts returns an integer array attribute.
func GetAttrInts(node *Node, name string) []int64 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].Ints
		}
	}
	return nil
}

// GetAttrFloats returns a float array attribute.
func GetAttrFloats(node *Node, name string) []float32 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].Floats
		}
	}
	return nil
}
