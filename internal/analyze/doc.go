// Package analyze loads Go packages with golang.org/x/tools/go/packages and
// builds a type graph of their exported named types, so rule files can be
// checked without compiling the program that uses them.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: kind (struct/basic/named/pointer/slice/map/interface/external)
//     plus element, underlying and field information
//   - FieldInfo: field name, type, tag and embedding
package analyze
