package queries

// typescriptQuery extends javascriptQuery with TypeScript's own declaration
// forms; the JS patterns still match TS source since the TS grammar is a
// superset, so both are included.
const typescriptQuery = javascriptQuery + `
(interface_declaration
  name: (type_identifier) @name) @definition.interface

(type_alias_declaration
  name: (type_identifier) @name) @definition.type_alias

(enum_declaration
  name: (identifier) @name) @definition.enum

(enum_body
  (property_identifier) @name) @definition.enum_member

(interface_declaration) @scope.class

(class_declaration
  (class_heritage
    (implements_clause (type_identifier) @name))) @reference.implements
`

// tsxQuery reuses the TypeScript catalog; JSX constructs are parsed by the
// same grammar and don't introduce new definition/reference captures this
// catalog needs.
const tsxQuery = typescriptQuery
