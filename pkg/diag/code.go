package diag

// Code is a stable, closed enumeration of diagnostic kinds. Downstream
// consumers (tests, the codegen collaborator) discriminate on Code, never on
// Message text, per spec.md's "Diagnostic format" contract.
type Code uint

// The codes named explicitly by spec.md §6, plus the additional codes the
// expanded semantic analyzer needs (documented in SPEC_FULL.md).
const (
	CodeNone Code = iota
	CodeUnexpectedToken
	CodeExpectedToken
	CodeDuplicateModule
	CodeInvalidModuleScope
	CodeExportRequiresDeclaration
	CodeImplicitMainExport
	CodeUnreachableCode
	CodeTypeMismatch
	CodeInvalidOperand
	CodeInvalidAssignmentTarget
	CodeUndefinedIdentifier
	CodeDuplicateDeclaration
	CodeArityMismatch
	CodeUnknownIntrinsic
	CodeNonConstantAddress
	CodeInvalidStorageClass
	CodeDivisionByZeroWarning
	CodeUnusedFunction
	CodeLoweringUnsupported
)

// String renders the code as the identifier used in spec.md, e.g.
// "UNDEFINED_IDENTIFIER". This is diagnostic sugar only; nothing other than
// Code itself is part of the discrimination contract.
func (c Code) String() string {
	switch c {
	case CodeUnexpectedToken:
		return "UNEXPECTED_TOKEN"
	case CodeExpectedToken:
		return "EXPECTED_TOKEN"
	case CodeDuplicateModule:
		return "DUPLICATE_MODULE"
	case CodeInvalidModuleScope:
		return "INVALID_MODULE_SCOPE"
	case CodeExportRequiresDeclaration:
		return "EXPORT_REQUIRES_DECLARATION"
	case CodeImplicitMainExport:
		return "IMPLICIT_MAIN_EXPORT"
	case CodeUnreachableCode:
		return "UNREACHABLE_CODE"
	case CodeTypeMismatch:
		return "TYPE_MISMATCH"
	case CodeInvalidOperand:
		return "INVALID_OPERAND"
	case CodeInvalidAssignmentTarget:
		return "INVALID_ASSIGNMENT_TARGET"
	case CodeUndefinedIdentifier:
		return "UNDEFINED_IDENTIFIER"
	case CodeDuplicateDeclaration:
		return "DUPLICATE_DECLARATION"
	case CodeArityMismatch:
		return "ARITY_MISMATCH"
	case CodeUnknownIntrinsic:
		return "UNKNOWN_INTRINSIC"
	case CodeNonConstantAddress:
		return "NON_CONSTANT_ADDRESS"
	case CodeInvalidStorageClass:
		return "INVALID_STORAGE_CLASS"
	case CodeDivisionByZeroWarning:
		return "DIVISION_BY_ZERO_WARNING"
	case CodeUnusedFunction:
		return "UNUSED_FUNCTION"
	case CodeLoweringUnsupported:
		return "LOWERING_UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}
