// Package interactive provides the interactive command-line interface
// for the OPC UA browser.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/client"
	"github.com/opcua-sdk/opcua-go/pkg/continuation"
	"github.com/opcua-sdk/opcua-go/pkg/discovery"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// commandTimeout bounds a single interactive operation.
const commandTimeout = 10 * time.Second

// ShellConfig provides configuration information to the interactive
// browser. This interface allows the interactive layer to access
// settings without depending on the main package's config structure.
type ShellConfig interface {
	// EndpointURL returns the endpoint the client is wired to.
	EndpointURL() string
}

// crumb is one step of the navigation trail.
type crumb struct {
	id   ua.NodeID
	name string
}

// monitorEntry tracks one active monitored item.
type monitorEntry struct {
	item *client.MonitoredItem
	node ua.NodeID
}

// Browser handles interactive mode for uabrowse.
type Browser struct {
	cli       *client.Client
	transport channel.Transport
	config    ShellConfig
	rl        *readline.Instance

	// trail is the navigation path; the last element is the current
	// node.
	trail []crumb

	// pending is the continuation handle of the last browse page.
	pending continuation.Handle

	sub *client.Subscription

	monMu    sync.Mutex
	monitors map[uint32]*monitorEntry
}

// New creates a new interactive browser handler.
func New(cli *client.Client, transport channel.Transport, cfg ShellConfig) (*Browser, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ua> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Browser{
		cli:       cli,
		transport: transport,
		config:    cfg,
		rl:        rl,
		trail:     []crumb{{id: ua.ObjectsFolder, name: "Objects"}},
		monitors:  make(map[uint32]*monitorEntry),
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (b *Browser) Stdout() io.Writer {
	return b.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline
// input.
func (b *Browser) Stderr() io.Writer {
	return b.rl.Stderr()
}

// Run starts the interactive command loop.
func (b *Browser) Run(ctx context.Context, cancel context.CancelFunc) {
	defer b.rl.Close()

	b.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := b.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(b.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		opCtx, opCancel := context.WithTimeout(ctx, commandTimeout)

		switch cmd {
		case "help", "?":
			b.printHelp()

		case "connect":
			b.cmdConnect(opCtx)

		case "disconnect":
			b.cmdDisconnect(opCtx)

		case "ls", "browse", "b":
			b.cmdBrowse(opCtx, args)

		case "next", "n":
			b.cmdNext(opCtx)

		case "cd":
			b.cmdCd(opCtx, args)

		case "pwd":
			b.cmdPwd()

		case "read", "r":
			b.cmdRead(opCtx, args)

		case "write", "w":
			b.cmdWrite(opCtx, args)

		case "call":
			b.cmdCall(opCtx, args)

		case "monitor", "mon":
			b.cmdMonitor(opCtx, args)

		case "unmonitor", "unmon":
			b.cmdUnmonitor(opCtx, args)

		case "monitors":
			b.cmdMonitors()

		case "discover", "d":
			b.cmdDiscover(ctx)

		case "export":
			b.cmdExport(opCtx, args)

		case "status", "stat":
			b.cmdStatus()

		case "quit", "exit", "q":
			opCancel()
			fmt.Fprintln(b.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(b.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
		opCancel()
	}
}

func (b *Browser) printHelp() {
	fmt.Fprintln(b.rl.Stdout(), `
OPC UA Browser Commands:
  Connection:
    connect            - Connect and activate a session
    disconnect         - Drop the connection
    discover           - Browse the network for OPC UA servers

  Navigation:
    ls [node]          - Browse references of the current node (one page)
    next               - Fetch the next page of the last browse
    cd <name|node|..>  - Descend into a child node (or go back up)
    pwd                - Show the current position

  Attributes:
    read [node] [attr] - Read an attribute (default: Value of current node)
    write <node> <val> - Write the Value attribute

  Methods:
    call <method> [args...] - Call a method of the current node

  Subscriptions:
    monitor <node>     - Monitor the Value attribute for changes
    unmonitor <item>   - Stop a monitored item
    monitors           - List active monitored items

  General:
    export <file> [node] - Export the subtree below a node as a YAML fixture
    status             - Show session state and counters
    help               - Show this help
    quit               - Exit the browser

  Node Format:
    Commands accept node IDs ("ns=2;i=100", "i=85", "s=name") or the
    browse name of a child of the current node.`)
}

// cmdConnect handles the connect command.
func (b *Browser) cmdConnect(ctx context.Context) {
	if err := b.cli.Connect(ctx); err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}
	if id, ok := b.cli.SessionID(); ok {
		fmt.Fprintf(b.rl.Stdout(), "Session activated: %s\n", id)
	}
}

// cmdDisconnect handles the disconnect command.
func (b *Browser) cmdDisconnect(ctx context.Context) {
	if err := b.transport.Close(ctx); err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Disconnect failed: %v\n", err)
		return
	}
	b.pending = 0
	b.sub = nil
	fmt.Fprintln(b.rl.Stdout(), "Disconnected")
}

// cmdBrowse handles the ls/browse command.
func (b *Browser) cmdBrowse(ctx context.Context, args []string) {
	node := b.node()
	if len(args) > 0 {
		resolved, err := b.resolve(ctx, args[0])
		if err != nil {
			fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
			return
		}
		node = resolved
	}

	result, err := b.cli.Browse(ctx, node, nil)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Browse failed: %v\n", err)
		return
	}

	b.printReferences(result.References)
	b.pending = result.Continuation
	if result.More() {
		fmt.Fprintln(b.rl.Stdout(), "More references available, use 'next'")
	}
}

// cmdNext handles the next command.
func (b *Browser) cmdNext(ctx context.Context) {
	if b.pending == 0 {
		fmt.Fprintln(b.rl.Stdout(), "No browse continuation pending")
		return
	}

	result, err := b.cli.BrowseNext(ctx, b.pending)
	if err != nil {
		b.pending = 0
		fmt.Fprintf(b.rl.Stdout(), "BrowseNext failed: %v\n", err)
		return
	}

	b.printReferences(result.References)
	b.pending = result.Continuation
	if result.More() {
		fmt.Fprintln(b.rl.Stdout(), "More references available, use 'next'")
	}
}

// cmdCd handles the cd command.
func (b *Browser) cmdCd(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(b.rl.Stdout(), "Usage: cd <name|node-id|..>")
		return
	}

	if args[0] == ".." {
		if len(b.trail) > 1 {
			b.trail = b.trail[:len(b.trail)-1]
		}
		b.cmdPwd()
		return
	}

	// Prefer a child's browse name, fall back to an explicit node ID.
	refs, err := b.cli.BrowseAll(ctx, b.node(), nil)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Browse failed: %v\n", err)
		return
	}
	for _, r := range refs {
		if strings.EqualFold(r.BrowseName.Name, args[0]) {
			b.trail = append(b.trail, crumb{id: r.NodeID.NodeID, name: r.BrowseName.Name})
			b.cmdPwd()
			return
		}
	}

	id, err := ua.ParseNodeID(args[0])
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "No child %q under %s\n", args[0], b.path())
		return
	}
	res, err := b.cli.ReadAttribute(ctx, id, ua.AttributeIDBrowseName)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if res.Value.Status.IsBad() {
		fmt.Fprintf(b.rl.Stdout(), "Node %s: %s\n", id, res.Value.Status)
		return
	}
	name := args[0]
	if qn, ok := res.Value.Value.(ua.QualifiedName); ok {
		name = qn.Name
	}
	b.trail = append(b.trail, crumb{id: id, name: name})
	b.cmdPwd()
}

// cmdPwd handles the pwd command.
func (b *Browser) cmdPwd() {
	fmt.Fprintf(b.rl.Stdout(), "%s (%s)\n", b.path(), b.node())
}

// cmdRead handles the read command.
func (b *Browser) cmdRead(ctx context.Context, args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	node, err := b.resolve(ctx, target)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
		return
	}

	attr := ua.AttributeIDValue
	if len(args) > 1 {
		attr, err = ua.ParseAttributeID(args[1])
		if err != nil {
			fmt.Fprintf(b.rl.Stdout(), "Invalid attribute: %v\n", err)
			return
		}
	}

	res, err := b.cli.ReadAttribute(ctx, node, attr)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Read failed: %v\n", err)
		return
	}

	dv := res.Value
	if dv.Status.IsBad() {
		fmt.Fprintf(b.rl.Stdout(), "%s %s: %s\n", node, attr, dv.Status)
		return
	}
	fmt.Fprintf(b.rl.Stdout(), "%s %s = %v\n", node, attr, dv.Value)
	if dv.SourceTimestamp.IsSet() {
		fmt.Fprintf(b.rl.Stdout(), "  source time: %s\n", dv.SourceTimestamp.Time().Format(time.RFC3339))
	}
}

// cmdWrite handles the write command.
func (b *Browser) cmdWrite(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(b.rl.Stdout(), "Usage: write <node> <value>")
		fmt.Fprintln(b.rl.Stdout(), "  Example: write Setpoint 21.5")
		return
	}

	node, err := b.resolve(ctx, args[0])
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
		return
	}

	value := parseValue(strings.Join(args[1:], " "))
	if err := b.cli.WriteValue(ctx, node, value); err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Write failed: %v\n", err)
		return
	}
	fmt.Fprintln(b.rl.Stdout(), "OK")
}

// cmdCall handles the call command. The method is resolved against the
// current node, which acts as the call's object.
func (b *Browser) cmdCall(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(b.rl.Stdout(), "Usage: call <method> [args...]")
		fmt.Fprintln(b.rl.Stdout(), "  The method must belong to the current node; use 'cd' first.")
		return
	}

	method, err := b.resolve(ctx, args[0])
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
		return
	}

	inputs := make([]ua.Variant, 0, len(args)-1)
	for _, raw := range args[1:] {
		inputs = append(inputs, parseValue(raw))
	}

	outputs, err := b.cli.CallMethod(ctx, b.node(), method, inputs)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Call failed: %v\n", err)
		return
	}

	if len(outputs) == 0 {
		fmt.Fprintln(b.rl.Stdout(), "OK (no outputs)")
		return
	}
	for i, out := range outputs {
		fmt.Fprintf(b.rl.Stdout(), "  out[%d] = %v\n", i, out)
	}
}

// cmdMonitor handles the monitor command.
func (b *Browser) cmdMonitor(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(b.rl.Stdout(), "Usage: monitor <node>")
		return
	}

	node, err := b.resolve(ctx, args[0])
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
		return
	}

	item, err := b.monitorValue(ctx, node)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Monitor failed: %v\n", err)
		return
	}

	b.monMu.Lock()
	b.monitors[item.ID()] = &monitorEntry{item: item, node: node}
	b.monMu.Unlock()

	go b.watch(item, args[0])
	fmt.Fprintf(b.rl.Stdout(), "Monitoring %s (item %d)\n", node, item.ID())
}

// monitorValue adds a monitored item, creating the shared subscription
// on first use. A subscription lost to a disconnect is replaced.
func (b *Browser) monitorValue(ctx context.Context, node ua.NodeID) (*client.MonitoredItem, error) {
	if b.sub == nil {
		sub, err := b.cli.CreateSubscription(ctx, nil)
		if err != nil {
			return nil, err
		}
		b.sub = sub
	}

	item, err := b.sub.MonitorValue(ctx, node, nil)
	if errors.Is(err, client.ErrSubscriptionClosed) {
		sub, err := b.cli.CreateSubscription(ctx, nil)
		if err != nil {
			return nil, err
		}
		b.sub = sub
		return sub.MonitorValue(ctx, node, nil)
	}
	return item, err
}

// watch prints data changes of one monitored item until its channel
// closes.
func (b *Browser) watch(item *client.MonitoredItem, label string) {
	for v := range item.Changes() {
		fmt.Fprintf(b.rl.Stdout(), "\n[%s] %s = %v\n",
			time.Now().Format("15:04:05"), label, v.Value)
		b.rl.Refresh()
	}
	b.monMu.Lock()
	delete(b.monitors, item.ID())
	b.monMu.Unlock()
}

// cmdUnmonitor handles the unmonitor command.
func (b *Browser) cmdUnmonitor(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(b.rl.Stdout(), "Usage: unmonitor <item-id>")
		fmt.Fprintln(b.rl.Stdout(), "  Use 'monitors' to list item IDs")
		return
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Invalid item ID: %v\n", err)
		return
	}

	b.monMu.Lock()
	entry := b.monitors[uint32(id)]
	b.monMu.Unlock()
	if entry == nil {
		fmt.Fprintf(b.rl.Stdout(), "No monitored item %d\n", id)
		return
	}

	if err := entry.item.Close(ctx); err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Unmonitor failed: %v\n", err)
		return
	}
	fmt.Fprintln(b.rl.Stdout(), "Monitor removed")
}

// cmdMonitors handles the monitors command.
func (b *Browser) cmdMonitors() {
	b.monMu.Lock()
	ids := make([]uint32, 0, len(b.monitors))
	for id := range b.monitors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	entries := make([]*monitorEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, b.monitors[id])
	}
	b.monMu.Unlock()

	if len(entries) == 0 {
		fmt.Fprintln(b.rl.Stdout(), "No active monitors")
		return
	}

	fmt.Fprintf(b.rl.Stdout(), "%-8s %s\n", "ITEM", "NODE")
	for i, entry := range entries {
		fmt.Fprintf(b.rl.Stdout(), "%-8d %s\n", ids[i], entry.node)
	}
}

// cmdDiscover handles the discover command.
func (b *Browser) cmdDiscover(ctx context.Context) {
	fmt.Fprintln(b.rl.Stdout(), "Browsing for OPC UA servers...")

	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Discovery error: %v\n", err)
		return
	}
	defer browser.Stop()

	discoverCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	servers, err := browser.Browse(discoverCtx)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Discovery error: %v\n", err)
		return
	}

	count := 0
	for srv := range servers {
		count++
		fmt.Fprintf(b.rl.Stdout(), "  %d. %s at %s (caps: %s)\n",
			count, srv.InstanceName, srv.EndpointURL(), capabilityList(srv.Capabilities))
	}
	if count == 0 {
		fmt.Fprintln(b.rl.Stdout(), "No servers found")
	}
}

// cmdExport handles the export command.
func (b *Browser) cmdExport(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(b.rl.Stdout(), "Usage: export <file> [node]")
		return
	}

	root := b.node()
	name := b.trail[len(b.trail)-1].name
	if len(args) > 1 {
		resolved, err := b.resolve(ctx, args[1])
		if err != nil {
			fmt.Fprintf(b.rl.Stdout(), "Error: %v\n", err)
			return
		}
		root = resolved
		name = args[1]
	}

	doc, err := ExportTree(ctx, b.cli, root, name)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Export failed: %v\n", err)
		return
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Export failed: %v\n", err)
		return
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		fmt.Fprintf(b.rl.Stdout(), "Export failed: %v\n", err)
		return
	}
	fmt.Fprintf(b.rl.Stdout(), "Exported %d nodes to %s\n", len(doc.Nodes), args[0])
}

// cmdStatus handles the status command.
func (b *Browser) cmdStatus() {
	stats := b.cli.Stats()

	fmt.Fprintln(b.rl.Stdout(), "\nBrowser Status")
	fmt.Fprintln(b.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(b.rl.Stdout(), "  Endpoint:       %s\n", b.config.EndpointURL())
	fmt.Fprintf(b.rl.Stdout(), "  Session State:  %s\n", stats.State)
	if id, ok := b.cli.SessionID(); ok {
		fmt.Fprintf(b.rl.Stdout(), "  Session ID:     %s\n", id)
	}
	fmt.Fprintf(b.rl.Stdout(), "  Requests:       %d sent, %d failed\n", stats.RequestsSent, stats.RequestsFailed)
	fmt.Fprintf(b.rl.Stdout(), "  Notifications:  %d\n", stats.Notifications)
	fmt.Fprintf(b.rl.Stdout(), "  Continuations:  %d outstanding\n", stats.OutstandingContinuations)
	fmt.Fprintf(b.rl.Stdout(), "  Subscriptions:  %d (%d items)\n", stats.Subscriptions, stats.MonitoredItems)
	fmt.Fprintln(b.rl.Stdout())
}

// node returns the current node.
func (b *Browser) node() ua.NodeID {
	return b.trail[len(b.trail)-1].id
}

// path returns the navigation trail as a slash path.
func (b *Browser) path() string {
	names := make([]string, len(b.trail))
	for i, c := range b.trail {
		names[i] = c.name
	}
	return "/" + strings.Join(names, "/")
}

// resolve turns a command argument into a node ID. "" and "." mean the
// current node; otherwise the argument is parsed as a node ID or
// matched against the browse names of the current node's children.
func (b *Browser) resolve(ctx context.Context, arg string) (ua.NodeID, error) {
	if arg == "" || arg == "." {
		return b.node(), nil
	}
	if id, err := ua.ParseNodeID(arg); err == nil {
		return id, nil
	}

	refs, err := b.cli.BrowseAll(ctx, b.node(), nil)
	if err != nil {
		return nil, err
	}
	for _, r := range refs {
		if strings.EqualFold(r.BrowseName.Name, arg) {
			return r.NodeID.NodeID, nil
		}
	}
	return nil, fmt.Errorf("no child %q under %s", arg, b.path())
}

// printReferences renders one page of browse results as a table.
func (b *Browser) printReferences(refs []ua.ReferenceDescription) {
	if len(refs) == 0 {
		fmt.Fprintln(b.rl.Stdout(), "No references")
		return
	}

	fmt.Fprintf(b.rl.Stdout(), "%-10s %-24s %-20s %s\n", "CLASS", "BROWSENAME", "NODEID", "DISPLAYNAME")
	for _, r := range refs {
		fmt.Fprintf(b.rl.Stdout(), "%-10s %-24s %-20s %s\n",
			r.NodeClass, r.BrowseName, r.NodeID.NodeID, r.DisplayName.Text)
	}
}

// parseValue converts a command argument into a variant (try int, then
// float, then bool, then string).
func parseValue(raw string) ua.Variant {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return strings.Trim(raw, "\"'")
}

// capabilityList renders capability tokens for display.
func capabilityList(caps []discovery.ServerCapability) string {
	if len(caps) == 0 {
		return string(discovery.CapabilityNA)
	}
	tokens := make([]string, len(caps))
	for i, c := range caps {
		tokens[i] = string(c)
	}
	return strings.Join(tokens, ",")
}
