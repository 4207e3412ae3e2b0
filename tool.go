package symdiff

import (
	"context"
	"fmt"
	"math"

	"github.com/bytedance/sonic"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// MaxOrder caps the "order" parameter of the diff tool. Derivatives of
// expressions like x^x grow quickly with the order.
const MaxOrder = 8

var toolNames = map[string]bool{
	"parse": true, "evaluate": true, "diff": true, "derive": true,
	"derive_points": true, "simplify": true, "numeric_derivative": true,
	"mcp_spec": true,
}

// KnownTool reports whether HandleToolCall accepts name.
func KnownTool(name string) bool { return toolNames[name] }

// HandleToolCall runs one tool request on the default engine.
func HandleToolCall(req ToolRequest) ToolResponse {
	return defaultEngine.HandleToolCall(context.Background(), req)
}

// HandleToolCall dispatches req to the named tool. Failures are reported in
// ToolResponse.Error, never as a Go error.
func (e *Engine) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	params := toolParams(req.Params)
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respond := func(n *Node) ToolResponse {
		s := n.String()
		return ToolResponse{Result: s, LaTeX: n.LaTeX(), String: s}
	}
	respondValue := func(v float64) ToolResponse {
		return ToolResponse{Result: v, String: FormatValue(v)}
	}

	switch req.Tool {
	case "parse":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		resp := respond(n)
		resp.Result = map[string]interface{}{
			"string":  resp.String,
			"symbols": n.Symbols(),
			"depth":   n.Depth(),
		}
		return resp

	case "evaluate":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		b, err := params.bindings("point", false)
		if err != nil {
			return fail(err)
		}
		r, err := n.Calculate(b)
		if err != nil {
			return fail(err)
		}
		if v, ok := r.Value(); ok {
			resp := respondValue(v)
			resp.LaTeX = r.LaTeX()
			return resp
		}
		return respond(r)

	case "diff":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		order, err := params.integer("order", 1)
		if err != nil {
			return fail(err)
		}
		if order < 1 || order > MaxOrder {
			return fail(fmt.Errorf("order must be between 1 and %d", MaxOrder))
		}
		d, err := e.DiffNContext(ctx, n, params.variable(), order)
		if err != nil {
			return fail(err)
		}
		return respond(d)

	case "derive":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		b, err := params.bindings("point", true)
		if err != nil {
			return fail(err)
		}
		v, err := e.DeriveContext(ctx, n, params.variable(), b)
		if err != nil {
			return fail(err)
		}
		return respondValue(v)

	case "derive_points":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		points, err := params.bindingsList("points")
		if err != nil {
			return fail(err)
		}
		values, err := e.DeriveAll(ctx, n, params.variable(), points)
		if err != nil {
			return fail(err)
		}
		strs := make([]string, len(values))
		for i, v := range values {
			strs[i] = FormatValue(v)
		}
		return ToolResponse{Result: values, String: fmt.Sprint(strs)}

	case "simplify":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		return respond(e.Simplify(n))

	case "numeric_derivative":
		n, err := e.parseParam(params)
		if err != nil {
			return fail(err)
		}
		b, err := params.bindings("point", true)
		if err != nil {
			return fail(err)
		}
		v, err := NumericDerivative(n, params.variable(), b)
		if err != nil {
			return fail(err)
		}
		return respondValue(v)

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// Parameter decoding
// ============================================================

type toolParams map[string]interface{}

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p toolParams) variable() string {
	if s, err := p.str("var"); err == nil && s != "" {
		return s
	}
	return DefaultVariable
}

func (p toolParams) integer(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("param %s must be an integer", key)
	}
	return int(f), nil
}

// bindings decodes an object of name → number.
func (p toolParams) bindings(key string, required bool) (Bindings, error) {
	v, ok := p[key]
	if !ok {
		if required {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		return nil, nil
	}
	return toBindings(key, v)
}

func (p toolParams) bindingsList(key string) ([]Bindings, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	out := make([]Bindings, len(raw))
	for i, r := range raw {
		b, err := toBindings(fmt.Sprintf("%s[%d]", key, i), r)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func toBindings(key string, v interface{}) (Bindings, error) {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: param %s must be an object", ErrBadPoint, key)
	}
	b := make(Bindings, len(raw))
	for name, val := range raw {
		f, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s must be a number", ErrBadPoint, key, name)
		}
		b[name] = f
	}
	return b, nil
}

func (e *Engine) parseParam(p toolParams) (*Node, error) {
	s, err := p.str("expr")
	if err != nil {
		return nil, err
	}
	return e.Parse(s)
}

// ============================================================
// Tool schema
// ============================================================

// MCPToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse an infix expression and report its symbols and depth", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("evaluate", "Evaluate an expression, substituting the numbers in point", []string{"expr"}, map[string]string{"expr": "string", "point": "object"}),
		ts("diff", "Symbolic derivative. Optional: var (default x), order", []string{"expr"}, map[string]string{"expr": "string", "var": "string", "order": "integer"}),
		ts("derive", "Value of the derivative at point", []string{"expr", "point"}, map[string]string{"expr": "string", "var": "string", "point": "object"}),
		ts("derive_points", "Values of the derivative at each of points", []string{"expr", "points"}, map[string]string{"expr": "string", "var": "string", "points": "array"}),
		ts("simplify", "Simplify an expression", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("numeric_derivative", "Finite-difference estimate of the derivative at point", []string{"expr", "point"}, map[string]string{"expr": "string", "var": "string", "point": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := sonic.ConfigStd.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
