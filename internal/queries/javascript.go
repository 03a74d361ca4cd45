package queries

const javascriptQuery = `
(function_declaration
  name: (identifier) @name) @definition.function

(method_definition
  name: (property_identifier) @name) @definition.method

(class_declaration
  name: (identifier) @name) @definition.class

(variable_declarator
  name: (identifier) @name
  value: (function_expression)) @definition.function

(variable_declarator
  name: (identifier) @name
  value: (arrow_function)) @definition.function

(variable_declarator
  name: (identifier) @name) @definition.variable

(function_declaration) @scope.function
(method_definition) @scope.function
(arrow_function) @scope.function
(class_declaration) @scope.class
(statement_block) @scope.block

(call_expression
  function: (identifier) @name) @reference.call

(call_expression
  function: (member_expression
    property: (property_identifier) @name)) @reference.call

(member_expression
  property: (property_identifier) @name) @reference.use

(new_expression
  constructor: (identifier) @name) @reference.instantiate

(class_declaration
  (class_heritage (identifier) @name)) @reference.extends
`
