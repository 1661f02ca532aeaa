package ua

// Well-known numeric node IDs from the standard namespace.
var (
	RootFolder    = NewNodeIDNumeric(0, 84)
	ObjectsFolder = NewNodeIDNumeric(0, 85)
	TypesFolder   = NewNodeIDNumeric(0, 86)
	ViewsFolder   = NewNodeIDNumeric(0, 87)

	Server                       = NewNodeIDNumeric(0, 2253)
	ServerArray                  = NewNodeIDNumeric(0, 2254)
	NamespaceArray               = NewNodeIDNumeric(0, 2255)
	ServerStatus                 = NewNodeIDNumeric(0, 2256)
	ServerStatusCurrentTime      = NewNodeIDNumeric(0, 2258)
	ServerStatusState            = NewNodeIDNumeric(0, 2259)
	ServerServiceLevel           = NewNodeIDNumeric(0, 2267)
	ServerStatusBuildInfo        = NewNodeIDNumeric(0, 2260)
	ServerStatusStartTime        = NewNodeIDNumeric(0, 2257)
	ServerGetMonitoredItemsCall  = NewNodeIDNumeric(0, 11492)
	ServerStatusSecondsTillReset = NewNodeIDNumeric(0, 2992)
)

// Well-known reference type IDs.
var (
	References                = NewNodeIDNumeric(0, 31)
	NonHierarchicalReferences = NewNodeIDNumeric(0, 32)
	HierarchicalReferences    = NewNodeIDNumeric(0, 33)
	HasChild                  = NewNodeIDNumeric(0, 34)
	Organizes                 = NewNodeIDNumeric(0, 35)
	HasModellingRule          = NewNodeIDNumeric(0, 37)
	HasTypeDefinition         = NewNodeIDNumeric(0, 40)
	HasSubtype                = NewNodeIDNumeric(0, 45)
	HasProperty               = NewNodeIDNumeric(0, 46)
	HasComponent              = NewNodeIDNumeric(0, 47)
	HasNotifier               = NewNodeIDNumeric(0, 48)
)

// Well-known type definition IDs.
var (
	BaseObjectType       = NewNodeIDNumeric(0, 58)
	FolderType           = NewNodeIDNumeric(0, 61)
	BaseDataVariableType = NewNodeIDNumeric(0, 63)
	PropertyType         = NewNodeIDNumeric(0, 68)
)
