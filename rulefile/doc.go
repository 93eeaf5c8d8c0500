// Package rulefile loads mapping rules from YAML and declares them on a
// builder.ConfigurationBuilder.
//
// A rule file names types; a Registry turns those names into Go types and
// supplies the transform functions expression sources may call:
//
//	version: "1"
//	mappings:
//	  - source: Person
//	    target: Contact
//	    requires:
//	      - type: Clock
//	        name: wall
//	    all: true
//	    except: [ID]
//	    properties:
//	      - source: Name
//	        target: FullName
//	      - expr: 'upper(First) + " " + Last'
//	        target: Display
//	    objects:
//	      - source: Address
//	        target: Address
//	    collections:
//	      - source: Items
//	        target: Lines
//	transforms: [upper]
//
// Type names resolve the way they are written: an explicit registration
// name, a bare type name ("Person"), a package-qualified name
// ("store.Person") or a full import path ("example.com/store.Person").
//
// Property sources are either a dotted field path or an expression in the
// github.com/expr-lang/expr language. Expressions see the source fields they
// reference by name, the required dependencies by their name (or dep1..depN
// when unnamed) and the registered transforms.
package rulefile
