// Package routing turns raw route tokens into matched routes for the
// navigation engine.
//
// # Overview
//
// A route token is the string taken from the path or hash fragment, for
// example "/app/users/42". Its first segment names the shell, the rest is the
// route path below it. The package provides:
//
//   - Parser: splits tokens in the slash or colon dialect
//   - Table: holds routes, shells and composite references
//   - Table.Match: finds the route for a parsed token and binds parameters
//   - Table.Validate: startup checks for unknown shells, duplicates and
//     ambiguous patterns
//
// # Dialects
//
// In the slash dialect parameters are ordinary segments:
//
//	/app/users/42/edit
//
// In the colon dialect they trail the last segment, separated by ";" or ":".
// A single token must use one delimiter:
//
//	/app/users;42;edit
//	/app/users:42:edit
//
// # Patterns
//
// Route patterns are written below their shell. A placeholder is "*" or
// ":name"; both match exactly one segment. Named placeholders give their name
// to the parameter acceptor derived for them when a route declares none:
//
//	table := routing.NewTable()
//	table.AddShell(routing.ShellConfig{
//		ShellID:   "app",
//		ShellType: routing.NewTypeID("app.Shell"),
//		Selectors: []string{"content"},
//	})
//	table.AddRoute(routing.RouteConfig{
//		RouteID:    "/users/:id",
//		ShellID:    "app",
//		Controller: routing.NewTypeID("app.users.UserController"),
//		Selector:   "content",
//	})
//	if err := table.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
//	tok, _ := routing.NewParser(routing.DialectSlash).Parse("/app/users/42")
//	m, err := table.Match(tok) // m.Token.ParameterValues == ["42"]
//
// # Precedence
//
// Validate rejects two routes that can match the same token. A table used
// without validation resolves such overlaps by registration order: the first
// registered route wins.
package routing
