package renderer

// Shader-visible global names written by the lighting and shadow passes.
const (
	PropDirectionalLightCount = "_DirectionalLightCount"
	PropDirectionalLightData  = "_DirectionalLightData"
	PropOtherLightCount       = "_OtherLightCount"
	PropOtherLightData        = "_OtherLightData"
	PropForwardPlusTiles      = "_ForwardPlusTiles"
	PropForwardPlusSettings   = "_ForwardPlusTileSettings"

	PropCascadeCount              = "_CascadeCount"
	PropShadowAtlasSize           = "_ShadowAtlasSize"
	PropShadowDistanceFade        = "_ShadowDistanceFade"
	PropShadowPancaking           = "_ShadowPancaking"
	PropDirectionalShadowAtlas    = "_DirectionalShadowAtlas"
	PropOtherShadowAtlas          = "_OtherShadowAtlas"
	PropDirectionalShadowCascades = "_DirectionalShadowCascades"
	PropDirectionalShadowMatrices = "_DirectionalShadowMatrices"
	PropOtherShadowData           = "_OtherShadowData"
)

// Shader keywords toggled by the lighting and shadow passes.
const (
	KeywordShadowFilterMedium = "_SHADOW_FILTER_MEDIUM"
	KeywordShadowFilterHigh   = "_SHADOW_FILTER_HIGH"
	KeywordSoftCascadeBlend   = "_SOFT_CASCADE_BLEND"
	KeywordShadowMaskAlways   = "_SHADOW_MASK_ALWAYS"
	KeywordShadowMaskDistance = "_SHADOW_MASK_DISTANCE"
	KeywordLightsPerObject    = "_LIGHTS_PER_OBJECT"
)

// keywordBits assigns each known keyword a bit in GPULightingGlobals.Keywords.
var keywordBits = map[string]uint32{
	KeywordShadowFilterMedium: 1 << 0,
	KeywordShadowFilterHigh:   1 << 1,
	KeywordSoftCascadeBlend:   1 << 2,
	KeywordShadowMaskAlways:   1 << 3,
	KeywordShadowMaskDistance: 1 << 4,
	KeywordLightsPerObject:    1 << 5,
}

// KeywordBit returns the GPULightingGlobals.Keywords bit of a keyword.
//
// Parameters:
//   - name: the keyword
//
// Returns:
//   - uint32: the bit, zero for unknown keywords
//   - bool: whether the keyword is known
func KeywordBit(name string) (uint32, bool) {
	bit, ok := keywordBits[name]
	return bit, ok
}
