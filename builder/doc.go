// Package builder is the fluent front end for declaring mapping rules.
//
//	b := builder.New()
//	builder.CreateMap[Person, Contact](b).
//		MapProperty(builder.Assign(
//			expr.Field(func(p *Person) *string { return &p.Name }),
//			expr.Field(func(c *Contact) *string { return &c.FullName })))
//	cfg, err := b.Build()
//
// Rules are kept in declaration order. Each rule captures the dependency
// names declared for its pair at the moment it is added; a later
// WithDependencies call replaces them for the rules that follow.
package builder
