package queries

const phpQuery = `
(function_definition
  name: (name) @name) @definition.function

(method_declaration
  name: (name) @name) @definition.method

(class_declaration
  name: (name) @name) @definition.class

(interface_declaration
  name: (name) @name) @definition.interface

(property_declaration
  (property_element (variable_name (name) @name))) @definition.field

(function_definition) @scope.function
(method_declaration) @scope.function
(class_declaration) @scope.class
(interface_declaration) @scope.class
(compound_statement) @scope.block

(function_call_expression
  function: (name) @name) @reference.call

(member_call_expression
  name: (name) @name) @reference.call

(object_creation_expression
  (qualified_name (name) @name)) @reference.instantiate

(base_clause
  (qualified_name (name) @name)) @reference.extends
`
