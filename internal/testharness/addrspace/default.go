package addrspace

import (
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Default builds a space with the standard namespace skeleton: the root
// folder hierarchy plus a Server object carrying status variables. The
// server's current time is computed at read time.
func Default() *Space {
	s := New()
	started := ua.DateTimeNow()

	must(s.AddNode(&Node{
		ID:             ua.RootFolder,
		Class:          ua.NodeClassObject,
		BrowseName:     ua.NewQualifiedName(0, "Root"),
		DisplayName:    ua.NewLocalizedText("Root"),
		TypeDefinition: ua.FolderType,
	}))
	mustNode(s.AddFolder(ua.RootFolder, ua.ObjectsFolder, "Objects"))
	mustNode(s.AddFolder(ua.RootFolder, ua.TypesFolder, "Types"))
	mustNode(s.AddFolder(ua.RootFolder, ua.ViewsFolder, "Views"))

	must(s.AddNode(&Node{
		ID:             ua.Server,
		Class:          ua.NodeClassObject,
		BrowseName:     ua.NewQualifiedName(0, "Server"),
		DisplayName:    ua.NewLocalizedText("Server"),
		TypeDefinition: ua.BaseObjectType,
	}))
	must(s.AddReference(ua.ObjectsFolder, ua.Organizes, ua.Server))

	addProperty(s, ua.Server, ua.ServerArray, "ServerArray", []string{"urn:opcua-go:server"})
	addProperty(s, ua.Server, ua.NamespaceArray, "NamespaceArray", []string{
		"http://opcfoundation.org/UA/",
		"urn:opcua-go:server",
	})
	addProperty(s, ua.Server, ua.ServerServiceLevel, "ServiceLevel", uint8(255))

	mustNode(s.AddVariable(ua.Server, ua.ServerStatus, "ServerStatus", "Running"))
	mustNode(s.AddVariable(ua.ServerStatus, ua.ServerStatusStartTime, "StartTime", started))
	mustNode(s.AddVariable(ua.ServerStatus, ua.ServerStatusState, "State", uint32(0)))
	mustNode(s.AddVariable(ua.ServerStatus, ua.ServerStatusBuildInfo, "BuildInfo", "opcua-go simulation server"))

	current, err := s.AddVariable(ua.ServerStatus, ua.ServerStatusCurrentTime, "CurrentTime", nil)
	must(err)
	current.OnRead = func() ua.Variant { return ua.DateTimeNow() }

	must(s.AddNode(&Node{
		ID:          ua.ServerGetMonitoredItemsCall,
		Class:       ua.NodeClassMethod,
		BrowseName:  ua.NewQualifiedName(0, "GetMonitoredItems"),
		DisplayName: ua.NewLocalizedText("GetMonitoredItems"),
	}))
	must(s.AddReference(ua.Server, ua.HasComponent, ua.ServerGetMonitoredItemsCall))

	return s
}

// addProperty attaches a property-typed variable to a parent.
func addProperty(s *Space, parent, id ua.NodeID, name string, value ua.Variant) {
	must(s.AddNode(&Node{
		ID:             id,
		Class:          ua.NodeClassVariable,
		BrowseName:     ua.NewQualifiedName(0, name),
		DisplayName:    ua.NewLocalizedText(name),
		TypeDefinition: ua.PropertyType,
		Value:          ua.NewDataValue(value, ua.DateTimeNow()),
	}))
	must(s.AddReference(parent, ua.HasProperty, id))
}

// Default construction uses fixed fresh IDs, so failures are
// programming errors.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustNode(_ *Node, err error) {
	if err != nil {
		panic(err)
	}
}
