package queries

const cppQuery = `
(function_definition
  declarator: (function_declarator
    declarator: (identifier) @name)) @definition.function

(function_definition
  declarator: (function_declarator
    declarator: (field_identifier) @name)) @definition.method

(class_specifier
  name: (type_identifier) @name) @definition.class

(struct_specifier
  name: (type_identifier) @name) @definition.struct

(field_declaration
  declarator: (field_identifier) @name) @definition.field

(namespace_definition
  name: (namespace_identifier) @name) @definition.namespace

(alias_declaration
  name: (type_identifier) @name) @definition.type_alias

(preproc_def
  name: (identifier) @name) @definition.macro

(preproc_function_def
  name: (identifier) @name) @definition.macro

(function_definition) @scope.function
(class_specifier) @scope.class
(struct_specifier) @scope.class
(namespace_definition) @scope.class
(compound_statement) @scope.block

(call_expression
  function: (identifier) @name) @reference.call

(call_expression
  function: (field_expression
    field: (field_identifier) @name)) @reference.call

(field_expression
  field: (field_identifier) @name) @reference.use

(base_class_clause
  (type_identifier) @name) @reference.extends
`
