package value

import "fmt"

// ParseMethodDescriptor splits a method descriptor like "(ILjava/lang/String;)V"
// into its parameter descriptors and return descriptor (JVMS §4.3.3).
func ParseMethodDescriptor(descriptor string) (params []string, ret string, err error) {
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return nil, "", fmt.Errorf("malformed method descriptor %q", descriptor)
	}
	i := 1
	for i < len(descriptor) && descriptor[i] != ')' {
		d, n, perr := readFieldDescriptor(descriptor, i)
		if perr != nil {
			return nil, "", perr
		}
		params = append(params, d)
		i = n
	}
	if i >= len(descriptor) {
		return nil, "", fmt.Errorf("malformed method descriptor %q: missing )", descriptor)
	}
	ret = descriptor[i+1:]
	return params, ret, nil
}

// readFieldDescriptor reads one field descriptor (a parameter or array
// element type) starting at index i, returning it and the index just
// past it.
func readFieldDescriptor(s string, i int) (string, int, error) {
	start := i
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return "", 0, fmt.Errorf("malformed descriptor %q", s)
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return s[start : i+1], i + 1, nil
	case 'L':
		end := i
		for end < len(s) && s[end] != ';' {
			end++
		}
		if end >= len(s) {
			return "", 0, fmt.Errorf("malformed object descriptor %q", s)
		}
		return s[start : end+1], end + 1, nil
	default:
		return "", 0, fmt.Errorf("unknown descriptor char %q in %q", s[i], s)
	}
}

// ParamSlots returns how many local-variable slots a parameter list
// occupies (long/double take two, matching Type.Slots).
func ParamSlots(params []string) int {
	n := 0
	for _, p := range params {
		n += TypeOfDescriptor(p).Slots()
	}
	return n
}

// TypeOfDescriptor maps a field descriptor to its computational category.
func TypeOfDescriptor(descriptor string) Type {
	if descriptor == "" {
		return TypeRef
	}
	switch descriptor[0] {
	case 'J':
		return TypeLong
	case 'F':
		return TypeFloat
	case 'D':
		return TypeDouble
	case 'L', '[':
		return TypeRef
	default: // B C S Z I
		return TypeInt
	}
}

// IsArrayDescriptor reports whether a field descriptor names an array type.
func IsArrayDescriptor(descriptor string) bool {
	return len(descriptor) > 0 && descriptor[0] == '['
}

// ArrayElementDescriptor strips one leading '[' to get the element
// descriptor of an array type, e.g. "[[I" -> "[I".
func ArrayElementDescriptor(descriptor string) string {
	if IsArrayDescriptor(descriptor) {
		return descriptor[1:]
	}
	return descriptor
}

// IsVoid reports whether a return descriptor is 'V' (void).
func IsVoid(returnDescriptor string) bool { return returnDescriptor == "V" }
