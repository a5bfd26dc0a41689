package idl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

func TestLoad_Demo(t *testing.T) {
	file, err := Load(filepath.Join("testdata", "demo.json"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "demo.json"), file.Path)
	assert.Equal(t, []string{"Demo"}, file.ServiceNames())

	demo := file.Services["Demo"]
	require.NotNil(t, demo)
	assert.Equal(t, "Demo", demo.Name)
	assert.EqualValues(t, 1, demo.ID)
	assert.Equal(t, []string{"Vessel"}, demo.ClassNames())
	assert.Empty(t, demo.EnumerationNames())

	proc := demo.Procedures["Vessel_GetName"]
	require.NotNil(t, proc)
	assert.Equal(t, "Vessel_GetName", proc.Name)
	require.Len(t, proc.Parameters, 1)
	assert.Equal(t, "this", proc.Parameters[0].Name)
	assert.Equal(t, Class{Service: "Demo", Name: "Vessel"}, proc.Parameters[0].Type)
	assert.True(t, proc.HasReturn())
	assert.Equal(t, String, proc.ReturnType)
	assert.False(t, proc.ReturnIsNullable)
}

func TestLoad_SpaceCenter(t *testing.T) {
	file, err := Load(filepath.Join("testdata", "space_center.json"))
	require.NoError(t, err)

	sc := file.Services["SpaceCenter"]
	require.NotNil(t, sc)

	assert.Equal(t, []string{"Camera", "Part", "ReferenceFrame", "Vessel"}, sc.ClassNames())
	assert.Equal(t, []string{"VesselSituation", "VesselType"}, sc.EnumerationNames())

	t.Run("parameter order is preserved", func(t *testing.T) {
		warp := sc.Procedures["WarpTo"]
		require.Len(t, warp.Parameters, 3)
		assert.Equal(t, "ut", warp.Parameters[0].Name)
		assert.Equal(t, "maxRailsRate", warp.Parameters[1].Name)
		assert.Equal(t, "maxPhysicsRate", warp.Parameters[2].Name)
		assert.False(t, warp.HasReturn())
	})

	t.Run("enum values keep declared order and duplicates", func(t *testing.T) {
		sit := sc.Enumerations["VesselSituation"]
		require.Len(t, sit.Values, 3)
		assert.Equal(t, EnumValue{Name: "PreLaunch", Value: 0}, sit.Values[0])
		assert.EqualValues(t, 1, sit.Values[1].Value)
		assert.EqualValues(t, 1, sit.Values[2].Value)
	})

	t.Run("nested containers", func(t *testing.T) {
		res := sc.Procedures["Vessel_ResourcesInDecoupleStage"].ReturnType
		assert.Equal(t, Dictionary{Types: []Type{String, Float}}, res)
		assert.Equal(t, "DICTIONARY(STRING, FLOAT)", res.String())

		pos := sc.Procedures["Vessel_Position"].ReturnType
		assert.Equal(t, Tuple{Types: []Type{Double, Double, Double}}, pos)
	})

	t.Run("legacy nullable key", func(t *testing.T) {
		assert.True(t, sc.Procedures["Part_get_Vessel"].ReturnIsNullable)
	})

	t.Run("protocol messages", func(t *testing.T) {
		assert.Equal(t, Event, sc.Procedures["Vessel_OnLaunch"].ReturnType)
	})

	t.Run("cross service reference", func(t *testing.T) {
		assert.Equal(t, Enumeration{Service: "UI", Name: "CameraMode"}, sc.Procedures["Camera_get_Mode"].ReturnType)
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecode_CaseInsensitiveCodes(t *testing.T) {
	doc := `{"S": {"id": 1, "procedures": {"P": {"id": 1, "parameters": [
		{"name": "a", "type": {"code": "list", "types": [{"code": "Sint32"}]}},
		{"name": "b", "type": {"code": "Procedure_Call"}}
	]}}, "classes": {}, "enumerations": {}}}`

	file, err := Decode([]byte(doc))
	require.NoError(t, err)

	params := file.Services["S"].Procedures["P"].Parameters
	assert.Equal(t, List{Types: []Type{SInt32}}, params[0].Type)
	assert.Equal(t, ProcedureCall, params[1].Type)
}

func TestDecode_ArityIsNotCheckedHere(t *testing.T) {
	doc := `{"S": {"id": 1, "procedures": {"P": {"id": 1, "parameters": [
		{"name": "a", "type": {"code": "LIST", "types": []}},
		{"name": "b", "type": {"code": "DICTIONARY", "types": [{"code": "STRING"}]}}
	]}}, "classes": {}, "enumerations": {}}}`

	file, err := Decode([]byte(doc))
	require.NoError(t, err)
	params := file.Services["S"].Procedures["P"].Parameters
	assert.Empty(t, params[0].Type.(List).Types)
	assert.Len(t, params[1].Type.(Dictionary).Types, 1)
}

func TestDecode_Errors(t *testing.T) {
	wrap := func(procs string) string {
		return `{"S": {"id": 1, "procedures": ` + procs + `, "classes": {}, "enumerations": {}}}`
	}

	tests := []struct {
		name     string
		doc      string
		sentinel error
		contains string
	}{
		{"not json", `{"S": `, errors.ErrParse, "invalid service file"},
		{"top level array", `[]`, errors.ErrParse, "invalid service file"},
		{"null document", `null`, errors.ErrParse, "null"},
		{"missing procedures", `{"S": {"id": 1, "classes": {}, "enumerations": {}}}`, errors.ErrParse, `"procedures"`},
		{"missing id", `{"S": {"procedures": {}, "classes": {}, "enumerations": {}}}`, errors.ErrParse, `"id"`},
		{"negative id", `{"S": {"id": -1, "procedures": {}, "classes": {}, "enumerations": {}}}`, errors.ErrParse, "invalid"},
		{"missing parameters", wrap(`{"P": {"id": 1}}`), errors.ErrParse, `"parameters"`},
		{"parameter without type", wrap(`{"P": {"id": 1, "parameters": [{"name": "x"}]}}`), errors.ErrParse, `"type"`},
		{"type without code", wrap(`{"P": {"id": 1, "parameters": [{"name": "x", "type": {}}]}}`), errors.ErrMalformedType, "no 'code'"},
		{"unknown code", wrap(`{"P": {"id": 1, "parameters": [{"name": "x", "type": {"code": "QUATERNION"}}]}}`), errors.ErrMalformedType, "QUATERNION"},
		{"list without types", wrap(`{"P": {"id": 1, "parameters": [{"name": "x", "type": {"code": "LIST"}}]}}`), errors.ErrMalformedType, "no 'types'"},
		{"class without service", wrap(`{"P": {"id": 1, "parameters": [{"name": "x", "type": {"code": "CLASS", "name": "V"}}]}}`), errors.ErrMalformedType, "no 'service'"},
		{"enum without name", wrap(`{"P": {"id": 1, "parameters": [], "return_type": {"code": "ENUMERATION", "service": "S"}}}`), errors.ErrMalformedType, "no 'name'"},
		{"null element", wrap(`{"P": {"id": 1, "parameters": [{"name": "x", "type": {"code": "TUPLE", "types": [null]}}]}}`), errors.ErrMalformedType, "element 0 is null"},
		{"duplicate enum value name", `{"S": {"id": 1, "procedures": {}, "classes": {}, "enumerations": {"E": {"values": [{"name": "A", "value": 0}, {"name": "A", "value": 1}]}}}}`, errors.ErrMalformedEnum, "duplicate"},
		{"enum value without value", `{"S": {"id": 1, "procedures": {}, "classes": {}, "enumerations": {"E": {"values": [{"name": "A"}]}}}}`, errors.ErrParse, `"value"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDecode_ErrorNamesConstruct(t *testing.T) {
	doc := `{"SpaceCenter": {"id": 1, "procedures": {"Vessel_Parts": {"id": 1, "parameters": [
		{"name": "this", "type": {"code": "LIST", "types": [{"code": "NOPE"}]}}
	]}}, "classes": {}, "enumerations": {}}}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "service SpaceCenter")
	assert.Contains(t, msg, "procedure Vessel_Parts")
	assert.Contains(t, msg, "parameter 0 (this)")
	assert.Contains(t, msg, "LIST element 0")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestDecode_EmptyDocument(t *testing.T) {
	file, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, file.Services)
	assert.Empty(t, file.ServiceNames())
}

func TestDecode_DocumentationOptional(t *testing.T) {
	doc := `{"S": {"id": 1, "procedures": {}, "classes": {"C": {}}, "enumerations": {"E": {"values": []}}}}`
	file, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "", file.Services["S"].Documentation)
	assert.Equal(t, "", file.Services["S"].Classes["C"].Documentation)
	assert.Empty(t, file.Services["S"].Enumerations["E"].Values)
}

func TestParseCode(t *testing.T) {
	code, ok := ParseCode(" dictionary ")
	assert.True(t, ok)
	assert.Equal(t, CodeDict, code)

	_, ok = ParseCode("VECTOR")
	assert.False(t, ok)
}

func TestTypeString(t *testing.T) {
	nested := List{Types: []Type{
		Tuple{Types: []Type{Class{Service: "SpaceCenter", Name: "Vessel"}, Enumeration{Service: "UI", Name: "Mode"}}},
	}}
	assert.Equal(t, "LIST(TUPLE(CLASS(SpaceCenter.Vessel), ENUMERATION(UI.Mode)))", nested.String())
	assert.Equal(t, "TUPLE()", Tuple{}.String())
	assert.Equal(t, "SET(<nil>)", Set{Types: []Type{nil}}.String())
}

func TestChildren(t *testing.T) {
	assert.Len(t, Children(Dictionary{Types: []Type{String, Bool}}), 2)
	assert.Nil(t, Children(String))
	assert.Nil(t, Children(Class{Service: "S", Name: "C"}))
}
