// Package classfile implements the class file codec: parsing, encoding,
// and structural verification of the .class format described by the Java
// Virtual Machine Specification, chapter 4.
package classfile

// Access flags (the subset corevm inspects; unrecognized bits are kept
// but never interpreted).
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSuper        = 0x0020
	AccSynchronized = 0x0020
	AccVolatile     = 0x0040
	AccBridge       = 0x0040
	AccTransient    = 0x0080
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
	AccSynthetic    = 0x1000
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
)

// ClassFile represents a parsed .class file (JVMS §4.1).
type ClassFile struct {
	MinorVersion     uint16
	MajorVersion     uint16
	ConstantPool     []ConstantPoolEntry
	AccessFlags      uint16
	ThisClass        uint16
	SuperClass       uint16
	Interfaces       []uint16
	Fields           []FieldInfo
	Methods          []MethodInfo
	BootstrapMethods []BootstrapMethod
	SourceFile       string
}

// ConstantPoolEntry is implemented by all constant pool types (JVMS §4.4).
type ConstantPoolEntry interface {
	Tag() uint8
}

type ConstantUtf8 struct{ Value string }

func (c *ConstantUtf8) Tag() uint8 { return TagUtf8 }

type ConstantInteger struct{ Value int32 }

func (c *ConstantInteger) Tag() uint8 { return TagInteger }

type ConstantFloat struct{ Value float32 }

func (c *ConstantFloat) Tag() uint8 { return TagFloat }

type ConstantLong struct{ Value int64 }

func (c *ConstantLong) Tag() uint8 { return TagLong }

type ConstantDouble struct{ Value float64 }

func (c *ConstantDouble) Tag() uint8 { return TagDouble }

type ConstantClass struct{ NameIndex uint16 }

func (c *ConstantClass) Tag() uint8 { return TagClass }

type ConstantString struct{ StringIndex uint16 }

func (c *ConstantString) Tag() uint8 { return TagString }

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldref) Tag() uint8 { return TagFieldref }

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodref) Tag() uint8 { return TagMethodref }

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodref) Tag() uint8 { return TagInterfaceMethodref }

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndType) Tag() uint8 { return TagNameAndType }

// Reference kinds a CONSTANT_MethodHandle_info's ReferenceKind byte may
// carry (JVMS table 5.4.3.5-A).
const (
	RefGetField uint8 = iota + 1
	RefGetStatic
	RefPutField
	RefPutStatic
	RefInvokeVirtual
	RefInvokeStatic
	RefInvokeSpecial
	RefNewInvokeSpecial
	RefInvokeInterface
)

// ConstantMethodHandle models CONSTANT_MethodHandle_info (JVMS §4.4.8),
// used by invokedynamic bootstrap arguments.
type ConstantMethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (c *ConstantMethodHandle) Tag() uint8 { return TagMethodHandle }

// ConstantMethodType models CONSTANT_MethodType_info (JVMS §4.4.9).
type ConstantMethodType struct{ DescriptorIndex uint16 }

func (c *ConstantMethodType) Tag() uint8 { return TagMethodType }

// ConstantDynamic models CONSTANT_Dynamic_info (JVMS §4.4.10).
type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamic) Tag() uint8 { return TagDynamic }

// ConstantInvokeDynamic models CONSTANT_InvokeDynamic_info (JVMS §4.4.10).
type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamic) Tag() uint8 { return TagInvokeDynamic }

// MethodInfo represents a method_info structure (JVMS §4.6).
type MethodInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
	Code        *CodeAttribute
}

// FieldInfo represents a field_info structure (JVMS §4.5).
type FieldInfo struct {
	AccessFlags    uint16
	Name           string
	Descriptor     string
	Attributes     []AttributeInfo
	ConstantValue  ConstantPoolEntry
	HasConstant    bool
}

// AttributeInfo represents a raw attribute_info structure (JVMS §4.7).
type AttributeInfo struct {
	Name string
	Data []byte
}

// ExceptionHandler represents one entry of a Code attribute's exception
// table (JVMS §4.7.3). StartPC/EndPC/HandlerPC are raw code-array byte
// offsets as stored in the class file; the interpreter matches them
// directly against a frame's byte-offset PC (see pkg/interp/exceptions.go).
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// LineNumberEntry represents one entry of a LineNumberTable attribute
// (JVMS §4.7.12), used to translate a PC back to a source line for stack
// traces.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// CodeAttribute represents the Code attribute of a method (JVMS §4.7.3).
type CodeAttribute struct {
	MaxStack          uint16
	MaxLocals          uint16
	Code              []byte
	ExceptionHandlers []ExceptionHandler
	LineNumbers       []LineNumberEntry
	StackMapFrames    []StackMapFrame
}

// BootstrapMethod represents one entry of the BootstrapMethods attribute
// (JVMS §4.7.23), consulted when resolving invokedynamic call sites.
type BootstrapMethod struct {
	MethodRef          uint16
	BootstrapArguments []uint16
}
