// SPDX-License-Identifier: GPL-2.0-or-later
package render

const (
	meshVertexSource = `
#version 330
layout (location = 0) in vec3 vertexPosition;
layout (location = 1) in vec3 normalPosition;
layout (location = 2) in vec2 uvTexturePosition;
out vec3 WorldPos;
out vec3 Normal;
out vec2 Texcoord;
uniform mat4 projection_matrix;
uniform mat4 view_matrix;
uniform mat4 model_matrix;
uniform mat3 normal_matrix;

void main() {
	vec4 world = model_matrix * vec4(vertexPosition, 1.0);
	WorldPos = world.xyz;
	Normal = normalize(normal_matrix * normalPosition);
	Texcoord = uvTexturePosition;
	gl_Position = projection_matrix * view_matrix * world;
}
` + "\x00"

	// The arena samples the cube map along the ray from the animal to the
	// fragment, which is what re-projects the virtual world onto it.
	meshFragmentSource = `
#version 330
in vec3 WorldPos;
in vec3 Normal;
in vec2 Texcoord;
out vec4 frag_color;
uniform vec3 diffuse;
uniform float flat_shading;
uniform vec3 light_position;
uniform vec3 playerPos;
uniform int use_cubemap;
uniform int use_texture;
uniform samplerCube cubemap;
uniform sampler2D tex;

void main() {
	vec3 color = diffuse;
	if (use_cubemap == 1) {
		color *= texture(cubemap, normalize(WorldPos - playerPos)).rgb;
	} else if (use_texture == 1) {
		color *= texture(tex, Texcoord).rgb;
	}
	if (flat_shading > 0.5) {
		frag_color = vec4(color, 1.0);
		return;
	}
	float lambert = max(dot(normalize(Normal), normalize(light_position - WorldPos)), 0.0);
	frag_color = vec4(color * (0.3 + 0.7 * lambert), 1.0);
}
` + "\x00"

	vertexTextureSource = `
#version 330
layout (location = 0) in vec2 position;
layout (location = 1) in vec2 texcoord;
out vec2 Texcoord;

void main() {
	Texcoord = texcoord;
	gl_Position = vec4(position, 0.0, 1.0);
}
` + "\x00"

	resampleFragment = `
#version 330
in vec2 Texcoord;
out vec4 frag_color;
uniform sampler2D tex;

void main() {
	frag_color = vec4(texture(tex, Texcoord).rgb, 1.0);
}
` + "\x00"
)
