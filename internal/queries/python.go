package queries

const pythonQuery = `
(function_definition
  name: (identifier) @name) @definition.function

(class_definition
  name: (identifier) @name) @definition.class

(function_definition) @scope.function
(class_definition) @scope.class
(block) @scope.block

(assignment
  left: (identifier) @name) @definition.variable

(call
  function: (identifier) @name) @reference.call

(call
  function: (attribute
    attribute: (identifier) @name)) @reference.call

(attribute
  attribute: (identifier) @name) @reference.use

(import_statement
  name: (dotted_name) @name) @reference.import

(import_from_statement
  module_name: (dotted_name) @name) @reference.import

(class_definition
  superclasses: (argument_list
    (identifier) @name)) @reference.extends
`
