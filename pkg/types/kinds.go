package types

// NodeKind identifies what a graph node represents.
type NodeKind int

const (
	NodeSymbol NodeKind = iota
	NodeFile
	NodeModule
	NodeNamespace
	NodePackage
	NodeStruct
	NodeClass
	NodeInterface
	NodeAnnotation
	NodeGlobalVariable
	NodeField
	NodeFunction
	NodeMethod
	NodeEnum
	NodeEnumConstant
	NodeTypedef
	NodeTypeParameter
	NodeMacro
	NodeUnion
)

var nodeKindNames = map[NodeKind]string{
	NodeSymbol:         "symbol",
	NodeFile:           "file",
	NodeModule:         "module",
	NodeNamespace:      "namespace",
	NodePackage:        "package",
	NodeStruct:         "struct",
	NodeClass:          "class",
	NodeInterface:      "interface",
	NodeAnnotation:     "annotation",
	NodeGlobalVariable: "global variable",
	NodeField:          "field",
	NodeFunction:       "function",
	NodeMethod:         "method",
	NodeEnum:           "enum",
	NodeEnumConstant:   "enum constant",
	NodeTypedef:        "typedef",
	NodeTypeParameter:  "type parameter",
	NodeMacro:          "macro",
	NodeUnion:          "union",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "symbol"
}

// EdgeKind identifies the relationship an edge expresses between two nodes.
type EdgeKind int

const (
	EdgeMember EdgeKind = iota
	EdgeTypeUsage
	EdgeUsage
	EdgeCall
	EdgeInheritance
	EdgeOverride
	EdgeTypeArgument
	EdgeTemplateSpecialization
	EdgeInclude
	EdgeImport
	EdgeMacroUsage
	EdgeAnnotationUsage
)

var edgeKindNames = map[EdgeKind]string{
	EdgeMember:                 "member",
	EdgeTypeUsage:              "type use",
	EdgeUsage:                  "use",
	EdgeCall:                   "call",
	EdgeInheritance:            "inheritance",
	EdgeOverride:               "override",
	EdgeTypeArgument:           "type argument",
	EdgeTemplateSpecialization: "template specialization",
	EdgeInclude:                "include",
	EdgeImport:                 "import",
	EdgeMacroUsage:             "macro use",
	EdgeAnnotationUsage:        "annotation use",
}

func (k EdgeKind) String() string {
	if name, ok := edgeKindNames[k]; ok {
		return name
	}
	return "use"
}

// DefinitionKind records how solidly a symbol definition was observed.
type DefinitionKind int

const (
	DefinitionNone DefinitionKind = iota
	DefinitionImplicit
	DefinitionExplicit
)

// LocationKind tags what a source location marks.
type LocationKind int

const (
	LocationToken LocationKind = iota
	LocationScope
	LocationSignature
	LocationLocalSymbol
	LocationComment
	LocationError
	LocationFullTextSearch
)

var locationKindNames = map[LocationKind]string{
	LocationToken:          "token",
	LocationScope:          "scope",
	LocationSignature:      "signature",
	LocationLocalSymbol:    "local symbol",
	LocationComment:        "comment",
	LocationError:          "error",
	LocationFullTextSearch: "full-text search",
}

func (k LocationKind) String() string {
	if name, ok := locationKindNames[k]; ok {
		return name
	}
	return "token"
}

// AccessKind is the access specifier attached to a member edge.
type AccessKind int

const (
	AccessNone AccessKind = iota
	AccessPublic
	AccessProtected
	AccessPrivate
	AccessDefault
	AccessTypeParameter
)

var accessKindNames = map[AccessKind]string{
	AccessNone:          "",
	AccessPublic:        "public",
	AccessProtected:     "protected",
	AccessPrivate:       "private",
	AccessDefault:       "default",
	AccessTypeParameter: "type parameter",
}

func (k AccessKind) String() string {
	return accessKindNames[k]
}
