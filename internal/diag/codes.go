package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Чтение и разбор единиц компиляции (.rast / .rast.mp)
	UnitInfo         Code = 1000
	UnitMalformed    Code = 1001
	UnitUnknownNode  Code = 1002
	UnitBadValue     Code = 1003
	UnitMissingField Code = 1004

	// Проход объявлений
	DeclInfo         Code = 2000
	DeclDuplicate    Code = 2001
	DeclUnknownBase  Code = 2002
	DeclInvalidShape Code = 2003

	// Понижение в IR
	LowInfo                 Code = 3000
	LowUnknownIdentifier    Code = 3001
	LowUnknownType          Code = 3002
	LowInvalidCast          Code = 3003
	LowAmbiguousReference   Code = 3004
	LowAccessDenied         Code = 3005
	LowDuplicateDefaultCase Code = 3006
	LowMisplacedControlFlow Code = 3007
	LowUnreachableStatement Code = 3008
	LowDuplicateCaseValue   Code = 3009
	LowNonConstantCase      Code = 3010
	LowNonConstantGlobal    Code = 3011
	LowMissingReturn        Code = 3012
	LowArgumentMismatch     Code = 3013
	LowMissingDeclaration   Code = 3014
	LowTrailingEmptyCase    Code = 3015
	LowInvalidOperand       Code = 3016
	LowLiteralOverflow      Code = 3017

	// Ввод-вывод
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOWriteError    Code = 4002

	// Проект
	ProjInfo        Code = 5000
	ProjBadManifest Code = 5001
	ProjNoUnits     Code = 5002
	ProjModuleClash Code = 5003

	// Проверка готового IR
	VerInfo          Code = 6000
	VerUnterminated  Code = 6001
	VerForeignTarget Code = 6002
	VerPhiIncoming   Code = 6003
	VerMalformed     Code = 6004
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	UnitInfo:                "Unit information",
	UnitMalformed:           "Malformed unit file",
	UnitUnknownNode:         "Unknown syntax node",
	UnitBadValue:            "Bad attribute value",
	UnitMissingField:        "Missing required attribute",
	DeclInfo:                "Declaration information",
	DeclDuplicate:           "Duplicate declaration",
	DeclUnknownBase:         "Unknown base struct",
	DeclInvalidShape:        "Invalid declaration",
	LowInfo:                 "Lowering information",
	LowUnknownIdentifier:    "Unknown identifier",
	LowUnknownType:          "Unknown type",
	LowInvalidCast:          "Invalid cast",
	LowAmbiguousReference:   "Ambiguous reference",
	LowAccessDenied:         "Access denied",
	LowDuplicateDefaultCase: "Duplicate default case",
	LowMisplacedControlFlow: "Misplaced control flow",
	LowUnreachableStatement: "Unreachable statement",
	LowDuplicateCaseValue:   "Duplicate case value",
	LowNonConstantCase:      "Non-constant case label",
	LowNonConstantGlobal:    "Non-constant global initializer",
	LowMissingReturn:        "Missing return",
	LowArgumentMismatch:     "Argument mismatch",
	LowMissingDeclaration:   "Missing declaration",
	LowTrailingEmptyCase:    "Trailing empty case",
	LowInvalidOperand:       "Invalid operand",
	LowLiteralOverflow:      "Literal out of range",
	IOInfo:                  "IO information",
	IOLoadFileError:         "Failed to load file",
	IOWriteError:            "Failed to write output",
	ProjInfo:                "Project information",
	ProjBadManifest:         "Bad project manifest",
	ProjNoUnits:             "No compilation units",
	ProjModuleClash:         "Two files map to one module",
	VerInfo:                 "Verifier information",
	VerUnterminated:         "Block without terminator",
	VerForeignTarget:        "Branch to a foreign block",
	VerPhiIncoming:          "Phi incoming from a non-predecessor",
	VerMalformed:            "Malformed function body",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("UNIT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("VER%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
