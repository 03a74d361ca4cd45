package queries

const goQuery = `
(package_clause
  (package_identifier) @name) @definition.module

(function_declaration
  name: (identifier) @name) @definition.function

(method_declaration
  receiver: (parameter_list
    (parameter_declaration
      type: [
        (type_identifier) @scope.receiver
        (pointer_type (type_identifier) @scope.receiver)
        (generic_type type: (type_identifier) @scope.receiver)
        (pointer_type (generic_type type: (type_identifier) @scope.receiver))
      ]))
  name: (field_identifier) @name) @definition.method

(type_spec
  name: (type_identifier) @name
  type: (struct_type)) @definition.struct

(type_spec
  name: (type_identifier) @name
  type: (interface_type)) @definition.interface

(type_spec
  name: (type_identifier) @name
  type: [
    (type_identifier)
    (qualified_type)
    (pointer_type)
    (map_type)
    (slice_type)
    (array_type)
    (channel_type)
    (function_type)
    (generic_type)
  ]) @definition.type

(type_alias
  name: (type_identifier) @name) @definition.type_alias

(const_spec
  name: (identifier) @name) @definition.constant

(var_spec
  name: (identifier) @name) @definition.variable

(field_declaration
  name: (field_identifier) @name) @definition.field

(call_expression
  function: (identifier) @name) @reference.call

(call_expression
  function: (selector_expression
    field: (field_identifier) @name)) @reference.call

(selector_expression
  field: (field_identifier) @name) @reference.use
`
