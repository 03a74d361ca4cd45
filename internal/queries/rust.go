package queries

const rustQuery = `
(function_item
  name: (identifier) @name) @definition.function

(struct_item
  name: (type_identifier) @name) @definition.struct

(enum_item
  name: (type_identifier) @name) @definition.enum

(trait_item
  name: (type_identifier) @name) @definition.trait

(impl_item
  type: (type_identifier) @name) @definition.impl

(mod_item
  name: (identifier) @name) @definition.module

(const_item
  name: (identifier) @name) @definition.constant

(type_item
  name: (type_identifier) @name) @definition.type_alias

(macro_definition
  name: (identifier) @name) @definition.macro

(function_item) @scope.function
(impl_item) @scope.class
(trait_item) @scope.class
(mod_item) @scope.class
(block) @scope.block

(call_expression
  function: (identifier) @name) @reference.call

(call_expression
  function: (field_expression
    field: (field_identifier) @name)) @reference.call

(field_expression
  field: (field_identifier) @name) @reference.use

(use_declaration
  argument: (scoped_identifier) @name) @reference.import

(impl_item
  trait: (type_identifier) @name) @reference.implements
`
