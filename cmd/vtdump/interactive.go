package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/bridge"
	"github.com/wippyai/com-bridge/idl"
	"github.com/wippyai/com-bridge/vtable"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	slotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	reservedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectIface modelState = iota
	stateSelectSlot
	stateInputArgs
	stateShowResult
)

type ifaceInfo struct {
	desc  *abi.Descriptor
	vt    *vtable.Vtable
	proxy *bridge.Proxy
}

type interactiveModel struct {
	err       error
	bridge    *bridge.Bridge
	filename  string
	result    string
	ifaces    []ifaceInfo
	inputs    []textinput.Model
	selIface  int
	selSlot   int
	focusIdx  int
	state     modelState
}

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		state:    stateSelectIface,
	}
}

type loadedMsg struct {
	err    error
	bridge *bridge.Bridge
	ifaces []ifaceInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadDefinition
}

// loadDefinition parses the definition file, builds every vtable, and
// exposes one echo instance per interface so every slot is invocable.
func (m *interactiveModel) loadDefinition() tea.Msg {
	text, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	descs, err := idl.Parse(string(text))
	if err != nil {
		return loadedMsg{err: err}
	}

	b := bridge.New()
	var ifaces []ifaceInfo
	for _, desc := range descs {
		obj, err := newEchoObject(desc)
		if err != nil {
			b.Close()
			return loadedMsg{err: err}
		}
		h, vt, err := b.Expose(obj, desc)
		if err != nil {
			b.Close()
			return loadedMsg{err: err}
		}
		ifaces = append(ifaces, ifaceInfo{desc: desc, vt: vt, proxy: b.Proxy(h, vt)})
	}

	return loadedMsg{bridge: b, ifaces: ifaces}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.bridge != nil {
				m.bridge.Close()
			}
			return m, tea.Quit

		case "up", "k":
			switch m.state {
			case stateSelectIface:
				if m.selIface > 0 {
					m.selIface--
				}
			case stateSelectSlot:
				if m.selSlot > 0 {
					m.selSlot--
				}
			}

		case "down", "j":
			switch m.state {
			case stateSelectIface:
				if m.selIface < len(m.ifaces)-1 {
					m.selIface++
				}
			case stateSelectSlot:
				if m.selSlot < m.ifaces[m.selIface].vt.NumSlots()-1 {
					m.selSlot++
				}
			}

		case "enter":
			switch m.state {
			case stateSelectIface:
				m.selSlot = 0
				m.state = stateSelectSlot

			case stateSelectSlot:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callSlot
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callSlot

			case stateShowResult:
				m.state = stateSelectSlot
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateSelectSlot:
				m.state = stateSelectIface
			case stateInputArgs:
				m.state = stateSelectSlot
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectSlot
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.bridge = msg.bridge
		m.ifaces = msg.ifaces

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	iface := m.ifaces[m.selIface]
	method, _ := iface.vt.MethodAt(m.selSlot)
	m.inputs = make([]textinput.Model, len(method.Params))
	for i, t := range method.Params {
		ti := textinput.New()
		ti.Placeholder = abi.TypeName(t)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callSlot() tea.Msg {
	iface := m.ifaces[m.selIface]
	method, _ := iface.vt.MethodAt(m.selSlot)

	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = convertArg(input.Value(), method.Params[i])
	}

	var results []any
	var err error
	switch m.selSlot {
	case abi.SlotQueryInterface:
		var h abi.Handle
		h, err = iface.proxy.QueryInterface(abi.InterfaceID(args[0].(string)))
		if err == nil {
			results = []any{uint64(h)}
		}
	case abi.SlotAddRef:
		var count uint32
		count, err = iface.proxy.AddRef()
		if err == nil {
			results = []any{count}
		}
	case abi.SlotRelease:
		var count uint32
		count, err = iface.proxy.Release()
		if err == nil {
			results = []any{count}
		}
	default:
		results, err = iface.proxy.Call(method.Name, args...)
	}
	if err != nil {
		return callResultMsg{err: err}
	}

	if len(results) == 0 {
		return callResultMsg{result: "OK"}
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("%v", r)
	}
	return callResultMsg{result: strings.Join(parts, ", ")}
}

func convertArg(value string, t wit.Type) any {
	switch t.(type) {
	case wit.String:
		return value
	case wit.U8:
		v, _ := strconv.ParseUint(value, 10, 8)
		return uint8(v)
	case wit.U16:
		v, _ := strconv.ParseUint(value, 10, 16)
		return uint16(v)
	case wit.U32:
		v, _ := strconv.ParseUint(value, 10, 32)
		return uint32(v)
	case wit.S8:
		v, _ := strconv.ParseInt(value, 10, 8)
		return int8(v)
	case wit.S16:
		v, _ := strconv.ParseInt(value, 10, 16)
		return int16(v)
	case wit.S32:
		v, _ := strconv.ParseInt(value, 10, 32)
		return int32(v)
	case wit.U64:
		v, _ := strconv.ParseUint(value, 10, 64)
		return v
	case wit.S64:
		v, _ := strconv.ParseInt(value, 10, 64)
		return v
	case wit.F32:
		v, _ := strconv.ParseFloat(value, 32)
		return float32(v)
	case wit.F64:
		v, _ := strconv.ParseFloat(value, 64)
		return v
	case wit.Bool:
		return value == "true" || value == "1"
	default:
		return value
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.ifaces) == 0 {
		return "Loading definition..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Vtable Explorer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectIface:
		b.WriteString("Select an interface:\n\n")
		for i, iface := range m.ifaces {
			line := fmt.Sprintf("%s (%d slots)", iface.desc.ID, iface.vt.NumSlots())
			if i == m.selIface {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateSelectSlot:
		iface := m.ifaces[m.selIface]
		b.WriteString(fmt.Sprintf("Slots of %s:\n\n", slotStyle.Render(string(iface.desc.ID))))
		for i := 0; i < iface.vt.NumSlots(); i++ {
			method, _ := iface.vt.MethodAt(i)
			line := fmt.Sprintf("[%d] %s%s", i, method.Name, formatSignature(method))
			switch {
			case i == m.selSlot:
				b.WriteString(selectedStyle.Render("> " + line))
			case i < abi.NumReservedSlots:
				b.WriteString(reservedStyle.Render("  " + line))
			default:
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter invoke • esc back • q quit"))

	case stateInputArgs:
		iface := m.ifaces[m.selIface]
		method, _ := iface.vt.MethodAt(m.selSlot)
		b.WriteString(fmt.Sprintf("Invoking slot %d: %s\n\n", m.selSlot, slotStyle.Render(method.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(abi.TypeName(method.Params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter invoke • esc back"))

	case stateShowResult:
		iface := m.ifaces[m.selIface]
		method, _ := iface.vt.MethodAt(m.selSlot)
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", slotStyle.Render(method.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
