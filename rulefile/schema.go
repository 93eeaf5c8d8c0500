package rulefile

// File is the root of a YAML rule file.
type File struct {
	// Version of the rule file schema. Defaults to "1".
	Version string `yaml:"version,omitempty"`

	// Mappings lists the type pairs and their rules.
	Mappings []Mapping `yaml:"mappings"`

	// Transforms names the registered transforms expressions may call.
	Transforms StringArray `yaml:"transforms,omitempty"`
}

// Mapping declares the rules of one source/target pair.
type Mapping struct {
	// Source type name (e.g. "Person", "store.Person" or a full path).
	Source string `yaml:"source"`

	// Target type name.
	Target string `yaml:"target"`

	// Requires lists the dependency types, in tuple order, with their
	// optional resolution names.
	Requires Requires `yaml:"requires,omitempty"`

	// All maps every same-named, same-typed target field that no other rule
	// of the mapping targets.
	All bool `yaml:"all,omitempty"`

	// Except lists target fields All skips.
	Except StringArray `yaml:"except,omitempty"`

	Properties  []Property `yaml:"properties,omitempty"`
	Objects     []Link     `yaml:"objects,omitempty"`
	Collections []Link     `yaml:"collections,omitempty"`
}

// Pair formats the mapping the way diagnostics print pairs.
func (m *Mapping) Pair() string {
	return m.Source + "->" + m.Target
}

// Require is one dependency of a mapping. YAML accepts "Clock",
// {type: Clock, name: wall} and {Clock: wall}.
type Require struct {
	Type string `yaml:"type"`
	Name string `yaml:"name,omitempty"`
}

// Requires is the dependency list of a mapping.
type Requires []Require

// Property assigns Source (a field path) or Expr (an expression) to the
// Target field path.
type Property struct {
	Source string `yaml:"source,omitempty"`
	Expr   string `yaml:"expr,omitempty"`
	Target string `yaml:"target"`
}

// Link maps a source field onto a target field through the rules of the
// nested pair.
type Link struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// StringArray is a string list that can be written as a single string.
type StringArray []string
