package queries

const javaQuery = `
(class_declaration
  name: (identifier) @name) @definition.class

(interface_declaration
  name: (identifier) @name) @definition.interface

(enum_declaration
  name: (identifier) @name) @definition.enum

(method_declaration
  name: (identifier) @name) @definition.method

(constructor_declaration
  name: (identifier) @name) @definition.constructor

(field_declaration
  declarator: (variable_declarator
    name: (identifier) @name)) @definition.field

(class_declaration) @scope.class
(interface_declaration) @scope.class
(enum_declaration) @scope.class
(method_declaration) @scope.function
(constructor_declaration) @scope.function
(block) @scope.block

(method_invocation
  name: (identifier) @name) @reference.call

(object_creation_expression
  type: (type_identifier) @name) @reference.instantiate

(class_declaration
  superclass: (superclass (type_identifier) @name)) @reference.extends

(class_declaration
  interfaces: (super_interfaces
    (type_list (type_identifier) @name))) @reference.implements
`
