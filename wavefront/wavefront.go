// SPDX-License-Identifier: GPL-2.0-or-later

// Package wavefront reads Wavefront OBJ files into scene meshes.
//
// Object format: http://paulbourke.net/dataformats/obj/
// Material format: http://paulbourke.net/dataformats/mtl/
package wavefront

import (
	"bufio"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"ratcave/scene"
)

// ErrNoSuchMesh is returned for object names not present in the file.
var ErrNoSuchMesh = errors.New("no such mesh")

type object struct {
	name      string
	material  string
	vertices  []mgl32.Vec3
	normals   []mgl32.Vec3
	texCoords []mgl32.Vec2
	hasUV     bool
}

// Reader holds every object of an OBJ file.
type Reader struct {
	objects   []*object
	materials map[string]material
}

type material struct {
	diffuse mgl32.Vec3
}

// Open reads the OBJ file at path. Material libraries are resolved
// relative to it.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open obj")
	}
	defer f.Close()
	dir := filepath.Dir(path)
	r, err := parse(f, func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, name))
	})
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return r, nil
}

// Parse reads an OBJ stream. mtllib statements are ignored.
func Parse(r io.Reader) (*Reader, error) {
	return parse(r, nil)
}

type parser struct {
	r       *Reader
	current *object
	// file wide vertex data, indices refer to it
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	openMtl   func(string) (io.ReadCloser, error)
	material  string
}

func parse(in io.Reader, openMtl func(string) (io.ReadCloser, error)) (*Reader, error) {
	p := &parser{
		r:       &Reader{materials: map[string]material{}},
		openMtl: openMtl,
	}
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		if err := p.line(s.Text()); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "read obj")
	}
	return p.r, nil
}

func parseFloats(fields []string, min int) ([]float32, error) {
	if len(fields) < min {
		return nil, errors.Errorf("need %d values, got %d", min, len(fields))
	}
	r := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		r[i] = float32(v)
	}
	return r, nil
}

func (p *parser) object(name string) *object {
	o := &object{name: name, material: p.material}
	p.r.objects = append(p.r.objects, o)
	p.current = o
	return o
}

func (p *parser) line(l string) error {
	if i := strings.IndexByte(l, '#'); i >= 0 {
		l = l[:i]
	}
	fields := strings.Fields(l)
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]
	switch fields[0] {
	case "v": // geometric vertices: x, y, z, [w]
		v, err := parseFloats(args, 3)
		if err != nil {
			return errors.Wrap(err, "vertex")
		}
		p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt": // texture vertices: u, [v], [w]
		v, err := parseFloats(args, 1)
		if err != nil {
			return errors.Wrap(err, "texture vertex")
		}
		uv := mgl32.Vec2{v[0], 0}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		p.uvs = append(p.uvs, uv)
	case "vn": // vertex normals: i, j, k
		v, err := parseFloats(args, 3)
		if err != nil {
			return errors.Wrap(err, "vertex normal")
		}
		p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]}.Normalize())
	case "f":
		return p.face(args)
	case "o":
		p.object(strings.Join(args, " "))
	case "g":
		// groups only name meshes of files without objects
		if p.current == nil || (len(p.current.vertices) == 0 && p.current.name == "") {
			p.object(strings.Join(args, " "))
		}
	case "usemtl":
		p.material = strings.Join(args, " ")
		if p.current != nil && p.current.material == "" {
			p.current.material = p.material
		}
	case "mtllib":
		return p.mtllib(args)
	case "s", "mg", "vp", "p", "l", "cstype", "deg", "bmat", "step",
		"curv", "curv2", "surf", "parm", "trim", "hole", "scrv", "sp", "end", "con",
		"bevel", "c_interp", "d_interp", "lod", "shadow_obj", "trace_obj", "ctech", "stech":
	default:
		log.Printf("wavefront: ignoring unknown statement %q", fields[0])
	}
	return nil
}

// index resolves a 1 based, possibly negative, OBJ index.
func index(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, errors.Errorf("index %d out of range [1, %d]", i, n)
}

type corner struct {
	pos, uv, normal int
	hasUV, hasN     bool
}

func (p *parser) corner(s string) (corner, error) {
	var c corner
	a := strings.Split(s, "/")
	var err error
	if c.pos, err = index(a[0], len(p.positions)); err != nil {
		return c, errors.Wrap(err, "face vertex")
	}
	if len(a) > 1 && a[1] != "" {
		if c.uv, err = index(a[1], len(p.uvs)); err != nil {
			return c, errors.Wrap(err, "face texture vertex")
		}
		c.hasUV = true
	}
	if len(a) > 2 && a[2] != "" {
		if c.normal, err = index(a[2], len(p.normals)); err != nil {
			return c, errors.Wrap(err, "face normal")
		}
		c.hasN = true
	}
	return c, nil
}

// face adds a polygon as a triangle fan.
func (p *parser) face(args []string) error {
	if len(args) < 3 {
		return errors.Errorf("face with %d vertices", len(args))
	}
	cs := make([]corner, len(args))
	for i, a := range args {
		c, err := p.corner(a)
		if err != nil {
			return err
		}
		cs[i] = c
	}
	o := p.current
	if o == nil {
		o = p.object("")
	}
	for i := 1; i+1 < len(cs); i++ {
		tri := [3]corner{cs[0], cs[i], cs[i+1]}
		var pos [3]mgl32.Vec3
		for j, c := range tri {
			pos[j] = p.positions[c.pos]
		}
		flat := faceNormal(pos)
		for j, c := range tri {
			o.vertices = append(o.vertices, pos[j])
			if c.hasN {
				o.normals = append(o.normals, p.normals[c.normal])
			} else {
				o.normals = append(o.normals, flat)
			}
			if c.hasUV {
				o.texCoords = append(o.texCoords, p.uvs[c.uv])
				o.hasUV = true
			} else {
				o.texCoords = append(o.texCoords, mgl32.Vec2{})
			}
		}
	}
	return nil
}

func faceNormal(p [3]mgl32.Vec3) mgl32.Vec3 {
	n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
	l := n.Len()
	if l == 0 || math32.IsNaN(l) {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Mul(1 / l)
}

func (p *parser) mtllib(names []string) error {
	if p.openMtl == nil {
		return nil
	}
	for _, name := range names {
		f, err := p.openMtl(name)
		if err != nil {
			// a missing material file only loses colours
			log.Printf("wavefront: material library %s: %v", name, err)
			continue
		}
		err = parseMtl(f, p.r.materials)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "material library %s", name)
		}
	}
	return nil
}

func parseMtl(in io.Reader, into map[string]material) error {
	s := bufio.NewScanner(in)
	var current string
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "newmtl":
			current = strings.Join(fields[1:], " ")
			into[current] = material{diffuse: mgl32.Vec3{0.8, 0.8, 0.8}}
		case "Kd":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			m := into[current]
			m.diffuse = mgl32.Vec3{v[0], v[1], v[2]}
			into[current] = m
		}
	}
	return s.Err()
}

// Names returns the mesh names in file order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.objects))
	for _, o := range r.objects {
		names = append(names, o.name)
	}
	return names
}

// Mesh returns a new mesh built from the object called name.
func (r *Reader) Mesh(name string) (*scene.Mesh, error) {
	for _, o := range r.objects {
		if o.name == name {
			return r.mesh(o), nil
		}
	}
	return nil, errors.Wrap(ErrNoSuchMesh, name)
}

// Meshes returns new meshes for every object with geometry.
func (r *Reader) Meshes() []*scene.Mesh {
	ms := make([]*scene.Mesh, 0, len(r.objects))
	for _, o := range r.objects {
		if len(o.vertices) == 0 {
			continue
		}
		ms = append(ms, r.mesh(o))
	}
	return ms
}

func (r *Reader) mesh(o *object) *scene.Mesh {
	var uvs []mgl32.Vec2
	if o.hasUV {
		uvs = append(uvs, o.texCoords...)
	}
	m := scene.NewMesh(o.name,
		append([]mgl32.Vec3(nil), o.vertices...),
		append([]mgl32.Vec3(nil), o.normals...),
		uvs)
	if mat, ok := r.materials[o.material]; ok {
		m.Uniforms.SetVec3("diffuse", mat.diffuse)
	}
	return m
}
