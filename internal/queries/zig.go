package queries

// zigQuery covers the subset of tree-sitter-zig's grammar this catalog
// needs: function and container-level variable declarations plus direct
// calls. Zig's `const Foo = struct { ... }` container idiom surfaces as a
// variable declaration, which is close enough for skeleton purposes.
const zigQuery = `
(function_declaration
  name: (identifier) @name) @definition.function

(variable_declaration
  (identifier) @name) @definition.variable

(call_expression
  function: (identifier) @name) @reference.call
`
