package taxonomy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ftahirops/biasdeck/model"
)

// ErrUnknownInstance is returned by Lookup for names it does not know.
var ErrUnknownInstance = errors.New("unknown instance")

// PayloadKind names the analysis document shape an instance consumes.
type PayloadKind int

const (
	PayloadBlocks PayloadKind = iota // {"blocks": {...}}
	PayloadLayers                    // {"layers": {...}, "ablation": {...}}
)

// Instance ties one taxonomy to its naming convention and control settings.
type Instance struct {
	Name       string
	Title      string
	Variant    string
	Taxonomy   *Taxonomy
	Classifier Classifier
	Step       float64
	ReadOnly   bool
	Payload    PayloadKind
}

// Category classifies id with the instance's naming convention.
func (in *Instance) Category(id string) Category {
	return in.Classifier.Classify(id)
}

// Quantizer returns the strength quantizer for the instance.
func (in *Instance) Quantizer() model.Quantizer {
	return model.NewQuantizer(in.Step)
}

// DiT variants.
const (
	VariantZImage  = "zimage"
	VariantKlein4B = "klein-4b"
	VariantKlein9B = "klein-9b"
)

type ditShape struct {
	double, single int
}

var kleinShapes = map[string]ditShape{
	VariantKlein4B: {double: 5, single: 20},
	VariantKlein9B: {double: 8, single: 24},
}

// DiTSpec returns the structural spec of a diffusion transformer variant.
func DiTSpec(variant string) (Spec, error) {
	if variant == "" || variant == VariantZImage {
		return Spec{
			Name: "dit/" + VariantZImage,
			Groups: []Group{
				{Parts: []string{"t_embedder", "x_embedder", "cap_embedder"}},
				{Prefix: "noise_refiner", Count: 2, Parts: []string{"attn", "ffn", "adaln"}},
				{Prefix: "context_refiner", Count: 2, Parts: []string{"attn", "ffn"}},
				{Prefix: "layers", Count: 30, Parts: []string{"attn", "ffn", "attn_norm", "ffn_norm"}},
				{Parts: []string{"final_layer"}},
			},
		}, nil
	}
	shape, ok := kleinShapes[variant]
	if !ok {
		return Spec{}, fmt.Errorf("dit variant %q: %w", variant, ErrUnknownInstance)
	}
	return Spec{
		Name: "dit/" + variant,
		Groups: []Group{
			{Parts: []string{"img_in", "txt_in", "time_in", "guidance_in"}},
			{Prefix: "double_blocks", Count: shape.double, Parts: []string{"img_attn", "txt_attn", "img_mlp", "txt_mlp", "img_mod", "txt_mod"}},
			{Prefix: "single_blocks", Count: shape.single, Parts: []string{"linear1", "linear2", "modulation", "norm"}},
			{Parts: []string{"final_layer"}},
		},
	}, nil
}

// TextEncoderSpec is a 36-layer decoder-only text encoder.
var TextEncoderSpec = Spec{
	Name: "te",
	Groups: []Group{
		{Parts: []string{"embed_tokens"}},
		{Prefix: "layers", Count: 36, Parts: []string{"self_attn", "mlp", "input_norm", "post_attn_norm"}},
		{Parts: []string{"final_norm"}},
	},
}

// VAESpec is a four-stage encoder/decoder. Only encoder stages 1 and 3
// downsample; every decoder stage but the last upsamples.
var VAESpec = Spec{
	Name: "vae",
	Groups: []Group{
		{Prefix: "encoder", Parts: []string{"conv_in"}},
		{Prefix: "enc_down", Count: 4, Parts: []string{"resnet_0", "resnet_1", "downsample"},
			Include: func(i int, part string) bool { return part != "downsample" || i == 1 || i == 3 }},
		{Prefix: "enc_mid", Parts: []string{"resnet_0", "attn", "resnet_1"}},
		{Prefix: "encoder", Parts: []string{"norm_out", "conv_out"}},
		{Parts: []string{"quant_conv", "post_quant_conv"}},
		{Prefix: "decoder", Parts: []string{"conv_in"}},
		{Prefix: "dec_mid", Parts: []string{"resnet_0", "attn", "resnet_1"}},
		{Prefix: "dec_up", Count: 4, Parts: []string{"resnet_0", "resnet_1", "resnet_2", "upsample"},
			Include: func(i int, part string) bool { return part != "upsample" || i < 3 }},
		{Prefix: "decoder", Parts: []string{"norm_out", "conv_out"}},
	},
}

var ditRules = Classifier{Rules: []Rule{
	suffix("norm", CategoryNormalization),
	contains("attn", CategoryAttention),
	contains("mlp", CategoryMLP),
	contains("ffn", CategoryMLP),
	suffix("_mod", CategoryGlobal),
	contains("modulation", CategoryGlobal),
	contains("adaln", CategoryGlobal),
	exact("t_embedder", CategoryGlobal),
	exact("time_in", CategoryGlobal),
	exact("guidance_in", CategoryGlobal),
	exact("final_layer", CategoryGlobal),
	contains("embedder", CategoryProjection),
	suffix("_in", CategoryProjection),
	prefix("linear", CategoryProjection),
	contains("_linear", CategoryProjection),
}}

var textEncoderRules = Classifier{Rules: []Rule{
	suffix("norm", CategoryNormalization),
	contains("attn", CategoryAttention),
	suffix("mlp", CategoryMLP),
	exact("embed_tokens", CategoryProjection),
}}

var vaeRules = Classifier{Rules: []Rule{
	contains("norm", CategoryNormalization),
	suffix("attn", CategoryAttention),
	suffix("sample", CategorySampling),
	contains("conv", CategoryProjection),
	contains("resnet", CategoryMLP),
}}

type builder func(variant string) (*Instance, error)

var instances = map[string]builder{
	"dit": func(v string) (*Instance, error) {
		spec, err := DiTSpec(v)
		if err != nil {
			return nil, err
		}
		if v == "" {
			v = VariantZImage
		}
		return &Instance{Name: "dit", Title: "DiT Debias", Variant: v, Taxonomy: Build(spec),
			Classifier: ditRules, Step: model.StepCoarse}, nil
	},
	"te": func(string) (*Instance, error) {
		return &Instance{Name: "te", Title: "Text Encoder Debias", Taxonomy: Build(TextEncoderSpec),
			Classifier: textEncoderRules, Step: model.StepCoarse}, nil
	},
	"vae": func(string) (*Instance, error) {
		return &Instance{Name: "vae", Title: "VAE Debias", Taxonomy: Build(VAESpec),
			Classifier: vaeRules, Step: model.StepFine}, nil
	},
	"dit-inspect": func(v string) (*Instance, error) {
		spec, err := DiTSpec(v)
		if err != nil {
			return nil, err
		}
		if v == "" {
			v = VariantZImage
		}
		return &Instance{Name: "dit-inspect", Title: "DiT Impact Inspector", Variant: v, Taxonomy: Build(spec),
			Classifier: ditRules, Step: model.StepCoarse, ReadOnly: true}, nil
	},
	"te-inspect": func(string) (*Instance, error) {
		return &Instance{Name: "te-inspect", Title: "Text Encoder Inspector", Taxonomy: Build(TextEncoderSpec),
			Classifier: textEncoderRules, Step: model.StepCoarse, ReadOnly: true, Payload: PayloadLayers}, nil
	},
}

// Lookup builds the named instance. Variant only matters for DiT-based
// instances and may be empty.
func Lookup(name, variant string) (*Instance, error) {
	b, ok := instances[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownInstance)
	}
	return b(variant)
}

// Names returns the registered instance names, sorted.
func Names() []string {
	names := make([]string, 0, len(instances))
	for n := range instances {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
