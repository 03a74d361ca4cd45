package queries

const csharpQuery = `
(class_declaration
  name: (identifier) @name) @definition.class

(interface_declaration
  name: (identifier) @name) @definition.interface

(struct_declaration
  name: (identifier) @name) @definition.struct

(enum_declaration
  name: (identifier) @name) @definition.enum

(method_declaration
  name: (identifier) @name) @definition.method

(constructor_declaration
  name: (identifier) @name) @definition.constructor

(property_declaration
  name: (identifier) @name) @definition.property

(field_declaration
  (variable_declaration
    (variable_declarator
      name: (identifier) @name))) @definition.field

(class_declaration) @scope.class
(interface_declaration) @scope.class
(struct_declaration) @scope.class
(method_declaration) @scope.function
(constructor_declaration) @scope.function
(block) @scope.block

(invocation_expression
  function: (identifier) @name) @reference.call

(invocation_expression
  function: (member_access_expression
    name: (identifier) @name)) @reference.call

(member_access_expression
  name: (identifier) @name) @reference.use

(object_creation_expression
  type: (identifier) @name) @reference.instantiate

(base_list
  (identifier) @name) @reference.extends
`
