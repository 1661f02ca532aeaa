package ua

import (
	"fmt"
	"strings"
)

// AttributeID selects which attribute of a node a read or write targets.
// The numeric values are the protocol's wire values and form a closed
// range; Valid reports membership.
type AttributeID uint32

const (
	AttributeIDNodeID                  AttributeID = 1
	AttributeIDNodeClass               AttributeID = 2
	AttributeIDBrowseName              AttributeID = 3
	AttributeIDDisplayName             AttributeID = 4
	AttributeIDDescription             AttributeID = 5
	AttributeIDWriteMask               AttributeID = 6
	AttributeIDUserWriteMask           AttributeID = 7
	AttributeIDIsAbstract              AttributeID = 8
	AttributeIDSymmetric               AttributeID = 9
	AttributeIDInverseName             AttributeID = 10
	AttributeIDContainsNoLoops         AttributeID = 11
	AttributeIDEventNotifier           AttributeID = 12
	AttributeIDValue                   AttributeID = 13
	AttributeIDDataType                AttributeID = 14
	AttributeIDValueRank               AttributeID = 15
	AttributeIDArrayDimensions         AttributeID = 16
	AttributeIDAccessLevel             AttributeID = 17
	AttributeIDUserAccessLevel         AttributeID = 18
	AttributeIDMinimumSamplingInterval AttributeID = 19
	AttributeIDHistorizing             AttributeID = 20
	AttributeIDExecutable              AttributeID = 21
	AttributeIDUserExecutable          AttributeID = 22
	AttributeIDDataTypeDefinition      AttributeID = 23
	AttributeIDRolePermissions         AttributeID = 24
	AttributeIDUserRolePermissions     AttributeID = 25
	AttributeIDAccessRestrictions      AttributeID = 26
	AttributeIDAccessLevelEx           AttributeID = 27
)

// Aliases kept for callers written against the old "Id" casing. Both
// spellings resolve to the same wire values.
const (
	// Deprecated: Use AttributeIDNodeID.
	AttributeIdNodeId = AttributeIDNodeID
	// Deprecated: Use AttributeIDNodeClass.
	AttributeIdNodeClass = AttributeIDNodeClass
	// Deprecated: Use AttributeIDBrowseName.
	AttributeIdBrowseName = AttributeIDBrowseName
	// Deprecated: Use AttributeIDDisplayName.
	AttributeIdDisplayName = AttributeIDDisplayName
	// Deprecated: Use AttributeIDDescription.
	AttributeIdDescription = AttributeIDDescription
	// Deprecated: Use AttributeIDWriteMask.
	AttributeIdWriteMask = AttributeIDWriteMask
	// Deprecated: Use AttributeIDUserWriteMask.
	AttributeIdUserWriteMask = AttributeIDUserWriteMask
	// Deprecated: Use AttributeIDIsAbstract.
	AttributeIdIsAbstract = AttributeIDIsAbstract
	// Deprecated: Use AttributeIDSymmetric.
	AttributeIdSymmetric = AttributeIDSymmetric
	// Deprecated: Use AttributeIDInverseName.
	AttributeIdInverseName = AttributeIDInverseName
	// Deprecated: Use AttributeIDContainsNoLoops.
	AttributeIdContainsNoLoops = AttributeIDContainsNoLoops
	// Deprecated: Use AttributeIDEventNotifier.
	AttributeIdEventNotifier = AttributeIDEventNotifier
	// Deprecated: Use AttributeIDValue.
	AttributeIdValue = AttributeIDValue
	// Deprecated: Use AttributeIDDataType.
	AttributeIdDataType = AttributeIDDataType
	// Deprecated: Use AttributeIDValueRank.
	AttributeIdValueRank = AttributeIDValueRank
	// Deprecated: Use AttributeIDArrayDimensions.
	AttributeIdArrayDimensions = AttributeIDArrayDimensions
	// Deprecated: Use AttributeIDAccessLevel.
	AttributeIdAccessLevel = AttributeIDAccessLevel
	// Deprecated: Use AttributeIDUserAccessLevel.
	AttributeIdUserAccessLevel = AttributeIDUserAccessLevel
	// Deprecated: Use AttributeIDMinimumSamplingInterval.
	AttributeIdMinimumSamplingInterval = AttributeIDMinimumSamplingInterval
	// Deprecated: Use AttributeIDHistorizing.
	AttributeIdHistorizing = AttributeIDHistorizing
	// Deprecated: Use AttributeIDExecutable.
	AttributeIdExecutable = AttributeIDExecutable
	// Deprecated: Use AttributeIDUserExecutable.
	AttributeIdUserExecutable = AttributeIDUserExecutable
	// Deprecated: Use AttributeIDDataTypeDefinition.
	AttributeIdDataTypeDefinition = AttributeIDDataTypeDefinition
	// Deprecated: Use AttributeIDRolePermissions.
	AttributeIdRolePermissions = AttributeIDRolePermissions
	// Deprecated: Use AttributeIDUserRolePermissions.
	AttributeIdUserRolePermissions = AttributeIDUserRolePermissions
	// Deprecated: Use AttributeIDAccessRestrictions.
	AttributeIdAccessRestrictions = AttributeIDAccessRestrictions
	// Deprecated: Use AttributeIDAccessLevelEx.
	AttributeIdAccessLevelEx = AttributeIDAccessLevelEx
)

var attributeIDNames = [...]string{
	AttributeIDNodeID:                  "NodeID",
	AttributeIDNodeClass:               "NodeClass",
	AttributeIDBrowseName:              "BrowseName",
	AttributeIDDisplayName:             "DisplayName",
	AttributeIDDescription:             "Description",
	AttributeIDWriteMask:               "WriteMask",
	AttributeIDUserWriteMask:           "UserWriteMask",
	AttributeIDIsAbstract:              "IsAbstract",
	AttributeIDSymmetric:               "Symmetric",
	AttributeIDInverseName:             "InverseName",
	AttributeIDContainsNoLoops:         "ContainsNoLoops",
	AttributeIDEventNotifier:           "EventNotifier",
	AttributeIDValue:                   "Value",
	AttributeIDDataType:                "DataType",
	AttributeIDValueRank:               "ValueRank",
	AttributeIDArrayDimensions:         "ArrayDimensions",
	AttributeIDAccessLevel:             "AccessLevel",
	AttributeIDUserAccessLevel:         "UserAccessLevel",
	AttributeIDMinimumSamplingInterval: "MinimumSamplingInterval",
	AttributeIDHistorizing:             "Historizing",
	AttributeIDExecutable:              "Executable",
	AttributeIDUserExecutable:          "UserExecutable",
	AttributeIDDataTypeDefinition:      "DataTypeDefinition",
	AttributeIDRolePermissions:         "RolePermissions",
	AttributeIDUserRolePermissions:     "UserRolePermissions",
	AttributeIDAccessRestrictions:      "AccessRestrictions",
	AttributeIDAccessLevelEx:           "AccessLevelEx",
}

// Valid reports whether the value is inside the closed attribute range.
func (a AttributeID) Valid() bool {
	return a >= AttributeIDNodeID && a <= AttributeIDAccessLevelEx
}

// String returns the canonical attribute name, or "ATTRIBUTE(<n>)" for
// values outside the closed range.
func (a AttributeID) String() string {
	if a.Valid() {
		return attributeIDNames[a]
	}
	return fmt.Sprintf("ATTRIBUTE(%d)", uint32(a))
}

// ParseAttributeID resolves an attribute name to its identifier. Matching
// is case-insensitive so the canonical names and the legacy lowercase
// forms resolve identically.
func ParseAttributeID(name string) (AttributeID, error) {
	for id := AttributeIDNodeID; id <= AttributeIDAccessLevelEx; id++ {
		if strings.EqualFold(attributeIDNames[id], name) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("attribute %q: unknown name: %w", name, ErrInvalidFormat)
}
