package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/bridge"
	"github.com/wippyai/com-bridge/idl"
	"github.com/wippyai/com-bridge/vtable"
)

func main() {
	var (
		idlFile     = flag.String("idl", "", "Path to interface definition file")
		funcName    = flag.String("call", "", "Method to invoke (interface#method)")
		argsStr     = flag.String("args", "", "Arguments to pass (comma-separated)")
		list        = flag.Bool("list", false, "List vtable layouts and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *idlFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: vtdump -idl <file.idl> [-list]")
		fmt.Fprintln(os.Stderr, "       vtdump -idl <file.idl> -call iface#method [-args a,b,c]")
		fmt.Fprintln(os.Stderr, "       vtdump -idl <file.idl> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			bridge.SetLogger(logger)
			vtable.SetLogger(logger)
		}
	}

	if *interactive {
		if err := runInteractive(*idlFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*idlFile, *funcName, *argsStr, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(idlFile, callSpec, argsStr string, listOnly bool) error {
	text, err := os.ReadFile(idlFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	descs, err := idl.Parse(string(text))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	b := bridge.New()
	defer b.Close()

	fmt.Printf("Definition: %s\n", idlFile)
	fmt.Printf("Interfaces: %d\n", len(descs))

	for _, desc := range descs {
		vt, err := b.Vtable(desc)
		if err != nil {
			return fmt.Errorf("build %s: %w", desc.ID, err)
		}
		fmt.Printf("\n%s (%d slots)\n", desc.ID, vt.NumSlots())
		for i := 0; i < vt.NumSlots(); i++ {
			m, _ := vt.MethodAt(i)
			tag := ""
			if i < abi.NumReservedSlots {
				tag = "  [reserved]"
			}
			fmt.Printf("  [%d] %s%s%s\n", i, m.Name, formatSignature(m), tag)
		}
	}

	if listOnly || callSpec == "" {
		return nil
	}

	ifaceName, methodName, ok := strings.Cut(callSpec, "#")
	if !ok {
		return fmt.Errorf("invalid call spec %q: want interface#method", callSpec)
	}

	var desc *abi.Descriptor
	for _, d := range descs {
		if string(d.ID) == ifaceName {
			desc = d
			break
		}
	}
	if desc == nil {
		return fmt.Errorf("interface %q not defined in %s", ifaceName, idlFile)
	}

	slot := desc.MethodIndex(methodName)
	if slot < 0 {
		return fmt.Errorf("method %q not defined on %s", methodName, ifaceName)
	}

	obj, err := newEchoObject(desc)
	if err != nil {
		return fmt.Errorf("demo object: %w", err)
	}
	h, vt, err := b.Expose(obj, desc)
	if err != nil {
		return fmt.Errorf("expose: %w", err)
	}

	m, _ := vt.MethodAt(slot)
	args, err := parseArgs(argsStr, m)
	if err != nil {
		return err
	}

	fmt.Printf("\nCalling %s#%s via slot %d...\n", ifaceName, methodName, slot)
	results, err := b.Proxy(h, vt).Call(methodName, args...)
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("OK")
	} else {
		for _, r := range results {
			fmt.Printf("Result: %v\n", r)
		}
	}
	return nil
}

func parseArgs(argsStr string, m abi.Method) ([]any, error) {
	var raw []string
	if argsStr != "" {
		raw = strings.Split(argsStr, ",")
	}
	if len(raw) != len(m.Params) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Name, len(m.Params), len(raw))
	}
	args := make([]any, len(raw))
	for i, s := range raw {
		args[i] = convertArg(s, m.Params[i])
	}
	return args, nil
}

func formatSignature(m abi.Method) string {
	params := make([]string, len(m.Params))
	for i, t := range m.Params {
		params[i] = abi.TypeName(t)
	}
	sig := "(" + strings.Join(params, ", ") + ")"
	if len(m.Results) > 0 {
		results := make([]string, len(m.Results))
		for i, t := range m.Results {
			results[i] = abi.TypeName(t)
		}
		if len(results) == 1 {
			sig += " -> " + results[0]
		} else {
			sig += " -> (" + strings.Join(results, ", ") + ")"
		}
	}
	return sig
}
