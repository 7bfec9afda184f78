package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLengthMatchesStructure(t *testing.T) {
	tests := []struct {
		name    string
		variant string
		want    int
	}{
		{"dit", "", 3 + 2*3 + 2*2 + 30*4 + 1},
		{"dit", VariantKlein4B, 4 + 5*6 + 20*4 + 1},
		{"dit", VariantKlein9B, 4 + 8*6 + 24*4 + 1},
		{"te", "", 1 + 36*4 + 1},
		// encoder: conv_in, 4 stages x 2 resnets + 2 downsamples, mid 3, norm/conv out,
		// quant convs, decoder conv_in, mid 3, 4 stages x 3 resnets + 3 upsamples, norm/conv out
		{"vae", "", 1 + (8 + 2) + 3 + 2 + 2 + 1 + 3 + (12 + 3) + 2},
		{"dit-inspect", VariantKlein9B, 4 + 8*6 + 24*4 + 1},
		{"te-inspect", "", 1 + 36*4 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.variant, func(t *testing.T) {
			in, err := Lookup(tt.name, tt.variant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Taxonomy.Len())

			seen := make(map[string]bool)
			for _, id := range in.Taxonomy.IDs() {
				assert.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(VAESpec).IDs()
	b := Build(VAESpec).IDs()
	assert.Equal(t, a, b)
}

func TestIrregularInclusion(t *testing.T) {
	tax := Build(VAESpec)
	assert.False(t, tax.Contains("enc_down_0_downsample"))
	assert.True(t, tax.Contains("enc_down_1_downsample"))
	assert.False(t, tax.Contains("enc_down_2_downsample"))
	assert.True(t, tax.Contains("enc_down_3_downsample"))
	assert.True(t, tax.Contains("dec_up_2_upsample"))
	assert.False(t, tax.Contains("dec_up_3_upsample"))
}

func TestOrderIsPresentationOrder(t *testing.T) {
	tax := Build(Spec{Name: "t", Groups: []Group{
		{Parts: []string{"head"}},
		{Prefix: "blk", Count: 2, Parts: []string{"a", "b"}},
		{Prefix: "out", Parts: []string{"proj"}},
	}})
	assert.Equal(t, []string{"head", "blk_0_a", "blk_0_b", "blk_1_a", "blk_1_b", "out_proj"}, tax.IDs())
	assert.Equal(t, []string{"blk_0", "blk_1"}, tax.Units())

	e, ok := tax.Lookup("blk_1_b")
	require.True(t, ok)
	assert.Equal(t, "blk_1", e.Unit())
	assert.Equal(t, 1, e.Index)

	e, ok = tax.Lookup("head")
	require.True(t, ok)
	assert.Equal(t, "head", e.Unit())
}

func TestDuplicateIDPanics(t *testing.T) {
	assert.Panics(t, func() {
		Build(Spec{Name: "bad", Groups: []Group{
			{Parts: []string{"x"}},
			{Parts: []string{"x"}},
		}})
	})
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("unet", "")
	assert.True(t, errors.Is(err, ErrUnknownInstance))

	_, err = Lookup("dit", "klein-2b")
	assert.True(t, errors.Is(err, ErrUnknownInstance))
}

func TestClassify(t *testing.T) {
	dit, err := Lookup("dit", VariantKlein4B)
	require.NoError(t, err)
	te, err := Lookup("te", "")
	require.NoError(t, err)
	vae, err := Lookup("vae", "")
	require.NoError(t, err)
	zimage, err := Lookup("dit", "")
	require.NoError(t, err)

	cases := []struct {
		in   *Instance
		id   string
		want Category
	}{
		{dit, "double_blocks_0_img_attn", CategoryAttention},
		{dit, "double_blocks_3_txt_mlp", CategoryMLP},
		{dit, "double_blocks_1_img_mod", CategoryGlobal},
		{dit, "single_blocks_7_linear1", CategoryProjection},
		{dit, "single_blocks_7_modulation", CategoryGlobal},
		{dit, "single_blocks_7_norm", CategoryNormalization},
		{dit, "img_in", CategoryProjection},
		{dit, "time_in", CategoryGlobal},
		{dit, "final_layer", CategoryGlobal},
		{zimage, "layers_4_attn_norm", CategoryNormalization},
		{zimage, "layers_4_attn", CategoryAttention},
		{zimage, "noise_refiner_1_adaln", CategoryGlobal},
		{zimage, "cap_embedder", CategoryProjection},
		{te, "layers_0_post_attn_norm", CategoryNormalization},
		{te, "layers_0_self_attn", CategoryAttention},
		{te, "embed_tokens", CategoryProjection},
		{vae, "enc_down_1_downsample", CategorySampling},
		{vae, "encoder_norm_out", CategoryNormalization},
		{vae, "dec_mid_attn", CategoryAttention},
		{vae, "quant_conv", CategoryProjection},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.in.Category(c.id), c.id)
	}
	assert.Equal(t, CategoryOther, Classifier{}.Classify("anything"))
}
