package transform

import "sort"

// Keep this sorted.
var builtinFunctionNames = []string{
	"EmitStreamVertex", "EmitVertex", "EndPrimitive", "EndStreamPrimitive", "abs", "acos",
	"acosh", "all", "any", "asin", "asinh", "atan", "atanh", "atomicAdd", "atomicAnd",
	"atomicCompSwap", "atomicCounter", "atomicCounterDecrement", "atomicCounterIncrement",
	"atomicExchange", "atomicMax", "atomicMin", "atomicOr", "atomicXor", "barrier", "bitCount",
	"bitfieldExtract", "bitfieldInsert", "bitfieldReverse", "ceil", "clamp", "cos", "cosh",
	"cross", "dFdx", "dFdxCoarse", "dFdxFine", "dFdy", "dFdyCoarse", "dFdyFine", "degrees",
	"determinant", "distance", "dot", "equal", "exp", "exp2", "faceforward", "findLSB",
	"findMSB", "floatBitsToInt", "floatBitsToUint", "floor", "fma", "fract", "frexp", "fwidth",
	"fwidthCoarse", "fwidthFine", "greaterThan", "greaterThanEqual", "groupMemoryBarrier",
	"imageAtomicAdd", "imageAtomicAnd", "imageAtomicCompSwap", "imageAtomicExchange",
	"imageAtomicMax", "imageAtomicMin", "imageAtomicOr", "imageAtomicXor", "imageLoad",
	"imageSamples", "imageSize", "imageStore", "imulExtended", "intBitsToFloat",
	"interpolateAtCentroid", "interpolateAtOffset", "interpolateAtSample", "inverse",
	"inversesqrt", "isinf", "isnan", "ldexp", "length", "lessThan", "lessThanEqual", "log",
	"log2", "matrixCompMult", "max", "memoryBarrier", "memoryBarrierAtomicCounter",
	"memoryBarrierBuffer", "memoryBarrierImage", "memoryBarrierShared", "min", "mix", "mod",
	"modf", "noise", "noise1", "noise2", "noise3", "noise4", "normalize", "not", "notEqual",
	"outerProduct", "packDouble2x32", "packHalf2x16", "packSnorm2x16", "packSnorm4x8",
	"packUnorm", "packUnorm2x16", "packUnorm4x8", "pow", "radians", "reflect", "refract",
	"round", "roundEven", "sign", "sin", "sinh", "smoothstep", "sqrt", "step",
	"tan", "tanh", "texelFetch", "texelFetchOffset", "texture", "textureGather",
	"textureGatherOffset", "textureGatherOffsets", "textureGrad", "textureGradOffset",
	"textureLod", "textureLodOffset", "textureOffset", "textureProj", "textureProjGrad",
	"textureProjGradOffset", "textureProjLod", "textureProjLodOffset", "textureProjOffset",
	"textureQueryLevels", "textureQueryLod", "textureSamples", "textureSize", "transpose",
	"trunc", "uaddCarry", "uintBitsToFloat", "umulExtended", "unpackDouble2x32",
	"unpackHalf2x16", "unpackSnorm2x16", "unpackSnorm4x8", "unpackUnorm", "unpackUnorm2x16",
	"unpackUnorm4x8", "usubBorrow",
}

// IsBuiltinFunction reports whether name is a built-in GLSL function.
func IsBuiltinFunction(name string) bool {
	i := sort.SearchStrings(builtinFunctionNames, name)
	return i < len(builtinFunctionNames) && builtinFunctionNames[i] == name
}

var builtinTypeNames = map[string]bool{
	"void": true, "bool": true, "int": true, "uint": true, "float": true, "double": true,
	"vec2": true, "vec3": true, "vec4": true,
	"ivec2": true, "ivec3": true, "ivec4": true,
	"uvec2": true, "uvec3": true, "uvec4": true,
	"bvec2": true, "bvec3": true, "bvec4": true,
	"dvec2": true, "dvec3": true, "dvec4": true,
	"mat2": true, "mat3": true, "mat4": true,
	"mat2x2": true, "mat2x3": true, "mat2x4": true,
	"mat3x2": true, "mat3x3": true, "mat3x4": true,
	"mat4x2": true, "mat4x3": true, "mat4x4": true,
	"sampler1D": true, "sampler2D": true, "sampler3D": true, "samplerCube": true,
	"sampler1DArray": true, "sampler2DArray": true, "samplerCubeArray": true,
	"sampler2DShadow": true, "samplerCubeShadow": true, "sampler2DArrayShadow": true,
	"isampler2D": true, "usampler2D": true, "sampler2DMS": true, "samplerBuffer": true,
	"image1D": true, "image2D": true, "image3D": true, "imageCube": true,
	"atomic_uint": true,
}

// IsBuiltinType reports whether name is a built-in GLSL type.
func IsBuiltinType(name string) bool {
	return builtinTypeNames[name]
}
