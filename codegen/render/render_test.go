package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cahu/krpc-mars-terraformer/codegen/rust"
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

func newRenderer(t *testing.T, dir string) *Renderer {
	t.Helper()
	r, err := New(Options{Naming: util.ToSnakeCase, Dir: dir, Version: "test"})
	require.NoError(t, err)
	return r
}

func serviceContext(t *testing.T, fixture, service string) *rust.ServiceContext {
	t.Helper()
	file, err := idl.Load(filepath.Join("..", "..", "idl", "testdata", fixture))
	require.NoError(t, err)
	svc, ok := file.Services[service]
	require.True(t, ok, "service %s not in %s", service, fixture)
	ctx, err := rust.BuildContext(svc, util.ToSnakeCase)
	require.NoError(t, err)
	ctx.Source = fixture
	return ctx
}

func render(t *testing.T, fixture, service string) string {
	t.Helper()
	out, err := newRenderer(t, "").Service(serviceContext(t, fixture, service))
	require.NoError(t, err)
	return string(out)
}

// balancedBraces reports whether braces, brackets and parentheses close in order
func balancedBraces(src string) bool {
	var stack []rune
	pairs := map[rune]rune{'}': '{', ')': '(', ']': '['}
	for _, r := range src {
		switch r {
		case '{', '(', '[':
			stack = append(stack, r)
		case '}', ')', ']':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

func TestNew_EmbeddedTemplates(t *testing.T) {
	r := newRenderer(t, "")
	names := r.Names()
	assert.Contains(t, names, ServiceTemplate)
	assert.Contains(t, names, IndexTemplate)
	assert.Contains(t, names, "rust.class")
	assert.Contains(t, names, "rust.enum")
}

func TestNew_DefaultNaming(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	out, err := r.Service(serviceContext(t, "demo.json", "Demo"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "pub fn get_name(&self)")
}

func TestService_Demo(t *testing.T) {
	out := render(t, "demo.json", "Demo")

	assert.True(t, strings.HasPrefix(out, "// Code generated by krpcgen"), out)
	assert.Contains(t, out, "// Source file: demo.json\n")
	assert.Contains(t, out, "// Generator version: test\n")
	assert.Contains(t, out, "//! Bindings for the kRPC service `Demo`.\n")
	assert.Contains(t, out, "pub const SERVICE: &str = \"Demo\";")
	assert.Contains(t, out, "pub struct Vessel {\n    id: u64,\n}")
	assert.Contains(t, out, "impl Vessel {\n    pub fn get_name(&self) -> CallHandle<String> {\n")
	assert.Contains(t, out, "            rpc::argument(0, self),\n        ];\n")
	assert.Contains(t, out, "rpc::call(\"Vessel_GetName\", arguments)")

	assert.NotContains(t, out, "use super::")
	assert.NotContains(t, out, "pub enum")
	assert.NotContains(t, out, "\n\n\n")
	assert.True(t, strings.HasSuffix(out, "}\n"), "output ends with a single newline")
	assert.False(t, strings.HasSuffix(out, "\n\n"))
	assert.True(t, balancedBraces(out))
}

func TestService_CrossService(t *testing.T) {
	a := render(t, "cross_service.json", "A")
	assert.Contains(t, a, "use krpc_mars::protobuf;\n\nuse super::b;\n")
	assert.Contains(t, a, "//! Service A.")
	assert.Contains(t, a, "pub fn inspect(part: &b::Part) -> CallHandle<()> {")
	assert.Contains(t, a, "        rpc::argument(0, part),\n")
	assert.Contains(t, a, "pub fn parts(&self) -> CallHandle<Vec<b::Part>> {")
	assert.True(t, balancedBraces(a))

	b := render(t, "cross_service.json", "B")
	assert.Contains(t, b, "use super::a;\n")
	assert.Contains(t, b, "pub fn ship(&self) -> CallHandle<Option<a::Ship>> {")
	assert.True(t, balancedBraces(b))
}

func TestService_SpaceCenter(t *testing.T) {
	out := render(t, "space_center.json", "SpaceCenter")

	// documentation collapsed onto one line
	assert.Contains(t, out, "//! <doc> <summary> Provides functionality to interact with the game. </summary> </doc>\n")

	// imports of other services
	assert.Contains(t, out, "use super::ui;\n")
	assert.Contains(t, out, "pub fn get_mode(&self) -> CallHandle<ui::CameraMode> {")

	// free procedures
	assert.Contains(t, out, "pub fn get_active_vessel() -> CallHandle<Vessel> {\n    let arguments = vec![\n    ];\n")
	assert.Contains(t, out, "pub fn warp_to(ut: f64, max_rails_rate: f32, max_physics_rate: f32) -> CallHandle<()> {")
	assert.Contains(t, out, "        rpc::argument(0, &ut),\n        rpc::argument(1, &max_rails_rate),\n        rpc::argument(2, &max_physics_rate),\n")
	assert.Contains(t, out, "pub fn launch_vessel(craft_directory: String, name: String, crew: &Vec<String>) -> CallHandle<()> {")
	assert.Contains(t, out, "        rpc::argument(2, crew),\n")

	// methods
	assert.Contains(t, out, "    /// The name of the vessel.\n    pub fn get_name(&self) -> CallHandle<String> {")
	assert.Contains(t, out, "pub fn position(&self, reference_frame: &ReferenceFrame) -> CallHandle<(f64, f64, f64)> {")
	assert.Contains(t, out, "            rpc::argument(1, reference_frame),\n")
	assert.Contains(t, out, "pub fn set_type(&self, r#type: VesselType) -> CallHandle<()> {")
	assert.Contains(t, out, "            rpc::argument(1, &r#type),\n")
	assert.Contains(t, out, "pub fn get_parts(&self) -> CallHandle<std::collections::HashSet<Part>> {")
	assert.Contains(t, out, "CallHandle<std::collections::HashMap<String, f32>>")
	assert.Contains(t, out, "pub fn on_launch(&self) -> CallHandle<krpc_mars::krpc::Event> {")
	assert.Contains(t, out, "pub fn get_vessel(&self) -> CallHandle<Option<Vessel>> {")

	// classes without methods still get a type
	assert.Contains(t, out, "pub struct ReferenceFrame {")
	assert.NotContains(t, out, "impl ReferenceFrame {")

	// enums
	assert.Contains(t, out, "/// The type of a vessel.\n#[derive(Clone, Copy, Debug, PartialEq, Eq, Hash)]\npub enum VesselType {\n    Ship,\n    Station,\n    Lander,\n    Probe,\n}")
	assert.Contains(t, out, "            VesselType::Probe => 3,\n")
	assert.Contains(t, out, "            3 => Some(VesselType::Probe),\n            _ => None,\n")
	assert.Contains(t, out, "            VesselSituation::Orbiting => 1,\n            VesselSituation::Landed => 1,\n")

	// enums before classes before free procedures, each sorted by name
	enumAt := strings.Index(out, "pub enum VesselSituation")
	classAt := strings.Index(out, "pub struct Camera")
	procAt := strings.Index(out, "pub fn launch_vessel")
	assert.Less(t, enumAt, strings.Index(out, "pub enum VesselType"))
	assert.Less(t, enumAt, classAt)
	assert.Less(t, classAt, procAt)
	assert.Less(t, strings.Index(out, "pub struct Camera"), strings.Index(out, "pub struct Part"))

	assert.NotContains(t, out, "\n\n\n")
	assert.True(t, balancedBraces(out))
}

func TestService_Deterministic(t *testing.T) {
	first := render(t, "space_center.json", "SpaceCenter")
	for range 5 {
		assert.Equal(t, first, render(t, "space_center.json", "SpaceCenter"))
	}
}

func TestService_NoSourceLine(t *testing.T) {
	ctx := serviceContext(t, "demo.json", "Demo")
	ctx.Source = ""
	out, err := newRenderer(t, "").Service(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "// Source file:")
}

func TestIndex(t *testing.T) {
	out, err := newRenderer(t, "").Index([]string{"a", "space_center"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "// Generator version: test\n\npub mod a;\npub mod space_center;\n"), string(out))
}

func TestFuncs(t *testing.T) {
	funcs := Funcs(util.ToSnakeCase, "v1")

	oneLine := funcs["one_line"].(func(string) string)
	assert.Equal(t, "a b", oneLine("  a\n\n   b \n"))

	snake := funcs["snake_case"].(func(string) string)
	assert.Equal(t, "max_rails_rate", snake("maxRailsRate"))

	ident := funcs["rust_ident"].(func(string) string)
	assert.Equal(t, "r#type", ident("type"))
	assert.Equal(t, "self_", ident("self"))

	fnName := funcs["fn_name"].(func(string) string)
	assert.Equal(t, "r#move", fnName("Move"))

	version := funcs["generator_version"].(func() string)
	assert.Equal(t, "v1", version())
}

func TestReturnType(t *testing.T) {
	vessel := rust.TypeRef{Expr: "Vessel", Kind: rust.KindClass}
	assert.Equal(t, "()", returnType(nil))
	assert.Equal(t, "Vessel", returnType(&rust.Return{Type: vessel, IsClass: true}))
	assert.Equal(t, "Option<Vessel>", returnType(&rust.Return{Type: vessel, IsClass: true, Nullable: true}))
}

func TestArgExpr(t *testing.T) {
	assert.Equal(t, "&ut", argExpr(rust.Param{Name: "ut"}))
	assert.Equal(t, "crew", argExpr(rust.Param{Name: "crew", ByRef: true}))
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ServiceTemplate),
		[]byte("custom {{.Name | snake_case}} {{template \"extra\" .}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.tmpl"),
		[]byte(`{{define "extra"}}{{len .Classes}}{{end}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("{{"), 0o644))

	r := newRenderer(t, dir)
	out, err := r.Service(serviceContext(t, "space_center.json", "SpaceCenter"))
	require.NoError(t, err)
	assert.Equal(t, "custom space_center 4", string(out))

	// templates that are not overridden stay embedded
	index, err := r.Index([]string{"a"})
	require.NoError(t, err)
	assert.Contains(t, string(index), "pub mod a;")
}

func TestOverrideDirectory_Empty(t *testing.T) {
	r := newRenderer(t, t.TempDir())
	out, err := r.Service(serviceContext(t, "demo.json", "Demo"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "pub struct Vessel")
}

func TestErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := New(Options{Dir: filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
		assert.True(t, errors.IsIOError(err))
	})

	t.Run("directory is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.tmpl")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		_, err := New(Options{Dir: path})
		require.Error(t, err)
		assert.True(t, errors.IsIOError(err))
		assert.NotEmpty(t, errors.GetAllHints(err))
	})

	t.Run("template syntax", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ServiceTemplate), []byte("{{if}"), 0o644))
		_, err := New(Options{Dir: dir})
		require.Error(t, err)
		assert.True(t, errors.IsRenderError(err))
	})

	t.Run("unknown filter", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ServiceTemplate), []byte("{{.Name | shout}}"), 0o644))
		_, err := New(Options{Dir: dir})
		require.Error(t, err)
		assert.True(t, errors.IsRenderError(err))
	})

	t.Run("execution", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ServiceTemplate), []byte("{{.Missing}}"), 0o644))
		r := newRenderer(t, dir)
		_, err := r.Service(serviceContext(t, "demo.json", "Demo"))
		require.Error(t, err)
		assert.True(t, errors.IsRenderError(err))
		assert.Contains(t, err.Error(), ServiceTemplate)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := newRenderer(t, "").Execute("nope.tmpl", nil)
		require.Error(t, err)
		assert.True(t, errors.IsRenderError(err))
	})
}
