package dicomtag

// Standard tags referenced by name in this module. The full table the
// dictionary is built from is tagDefinitions below.
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
	SourceApplicationEntityTitle   = Tag{0x0002, 0x0016}

	SpecificCharacterSet     = Tag{0x0008, 0x0005}
	ImageType                = Tag{0x0008, 0x0008}
	SOPClassUID              = Tag{0x0008, 0x0016}
	SOPInstanceUID           = Tag{0x0008, 0x0018}
	StudyDate                = Tag{0x0008, 0x0020}
	SeriesDate               = Tag{0x0008, 0x0021}
	StudyTime                = Tag{0x0008, 0x0030}
	AcquisitionDateTime      = Tag{0x0008, 0x002a}
	AccessionNumber          = Tag{0x0008, 0x0050}
	QueryRetrieveLevel       = Tag{0x0008, 0x0052}
	Modality                 = Tag{0x0008, 0x0060}
	Manufacturer             = Tag{0x0008, 0x0070}
	InstitutionName          = Tag{0x0008, 0x0080}
	ReferringPhysicianName   = Tag{0x0008, 0x0090}
	StudyDescription         = Tag{0x0008, 0x1030}
	SeriesDescription        = Tag{0x0008, 0x103e}
	ReferencedImageSequence  = Tag{0x0008, 0x1140}
	ReferencedSOPClassUID    = Tag{0x0008, 0x1150}
	ReferencedSOPInstanceUID = Tag{0x0008, 0x1155}

	PatientName      = Tag{0x0010, 0x0010}
	PatientID        = Tag{0x0010, 0x0020}
	PatientBirthDate = Tag{0x0010, 0x0030}
	PatientSex       = Tag{0x0010, 0x0040}
	PatientAge       = Tag{0x0010, 0x1010}
	PatientWeight    = Tag{0x0010, 0x1030}

	SliceThickness  = Tag{0x0018, 0x0050}
	PatientPosition = Tag{0x0018, 0x5100}

	StudyInstanceUID        = Tag{0x0020, 0x000d}
	SeriesInstanceUID       = Tag{0x0020, 0x000e}
	StudyID                 = Tag{0x0020, 0x0010}
	SeriesNumber            = Tag{0x0020, 0x0011}
	InstanceNumber          = Tag{0x0020, 0x0013}
	ImagePositionPatient    = Tag{0x0020, 0x0032}
	ImageOrientationPatient = Tag{0x0020, 0x0037}
	SliceLocation           = Tag{0x0020, 0x1041}

	SamplesPerPixel                     = Tag{0x0028, 0x0002}
	PhotometricInterpretation           = Tag{0x0028, 0x0004}
	PlanarConfiguration                 = Tag{0x0028, 0x0006}
	NumberOfFrames                      = Tag{0x0028, 0x0008}
	Rows                                = Tag{0x0028, 0x0010}
	Columns                             = Tag{0x0028, 0x0011}
	PixelSpacing                        = Tag{0x0028, 0x0030}
	BitsAllocated                       = Tag{0x0028, 0x0100}
	BitsStored                          = Tag{0x0028, 0x0101}
	HighBit                             = Tag{0x0028, 0x0102}
	PixelRepresentation                 = Tag{0x0028, 0x0103}
	WindowCenter                        = Tag{0x0028, 0x1050}
	WindowWidth                         = Tag{0x0028, 0x1051}
	RescaleIntercept                    = Tag{0x0028, 0x1052}
	RescaleSlope                        = Tag{0x0028, 0x1053}

	RedPaletteColorLookupTableDescriptor   = Tag{0x0028, 0x1101}
	GreenPaletteColorLookupTableDescriptor = Tag{0x0028, 0x1102}
	BluePaletteColorLookupTableDescriptor  = Tag{0x0028, 0x1103}
	RedPaletteColorLookupTableData         = Tag{0x0028, 0x1201}
	GreenPaletteColorLookupTableData       = Tag{0x0028, 0x1202}
	BluePaletteColorLookupTableData        = Tag{0x0028, 0x1203}

	PixelData = Tag{0x7fe0, 0x0010}

	Item                     = Tag{0xfffe, 0xe000}
	ItemDelimitationItem     = Tag{0xfffe, 0xe00d}
	SequenceDelimitationItem = Tag{0xfffe, 0xe0dd}
)

// tagDefinitions is a tab separated table: tag, VR, keyword, VM, name.
// Entries are a subset of PS3.6 chapters 6-8 covering file meta
// information, the patient/study/series/instance identifiers and the image
// pixel module.
const tagDefinitions = `
# File Meta Elements
(0002,0000)	UL	FileMetaInformationGroupLength	1	File Meta Information Group Length
(0002,0001)	OB	FileMetaInformationVersion	1	File Meta Information Version
(0002,0002)	UI	MediaStorageSOPClassUID	1	Media Storage SOP Class UID
(0002,0003)	UI	MediaStorageSOPInstanceUID	1	Media Storage SOP Instance UID
(0002,0010)	UI	TransferSyntaxUID	1	Transfer Syntax UID
(0002,0012)	UI	ImplementationClassUID	1	Implementation Class UID
(0002,0013)	SH	ImplementationVersionName	1	Implementation Version Name
(0002,0016)	AE	SourceApplicationEntityTitle	1	Source Application Entity Title
(0002,0017)	AE	SendingApplicationEntityTitle	1	Sending Application Entity Title
(0002,0018)	AE	ReceivingApplicationEntityTitle	1	Receiving Application Entity Title
(0002,0100)	UI	PrivateInformationCreatorUID	1	Private Information Creator UID
(0002,0102)	OB	PrivateInformation	1	Private Information
# Identifying
(0008,0005)	CS	SpecificCharacterSet	1-n	Specific Character Set
(0008,0008)	CS	ImageType	2-n	Image Type
(0008,0012)	DA	InstanceCreationDate	1	Instance Creation Date
(0008,0013)	TM	InstanceCreationTime	1	Instance Creation Time
(0008,0014)	UI	InstanceCreatorUID	1	Instance Creator UID
(0008,0016)	UI	SOPClassUID	1	SOP Class UID
(0008,0018)	UI	SOPInstanceUID	1	SOP Instance UID
(0008,0020)	DA	StudyDate	1	Study Date
(0008,0021)	DA	SeriesDate	1	Series Date
(0008,0022)	DA	AcquisitionDate	1	Acquisition Date
(0008,0023)	DA	ContentDate	1	Content Date
(0008,002A)	DT	AcquisitionDateTime	1	Acquisition DateTime
(0008,0030)	TM	StudyTime	1	Study Time
(0008,0031)	TM	SeriesTime	1	Series Time
(0008,0032)	TM	AcquisitionTime	1	Acquisition Time
(0008,0033)	TM	ContentTime	1	Content Time
(0008,0050)	SH	AccessionNumber	1	Accession Number
(0008,0052)	CS	QueryRetrieveLevel	1	Query/Retrieve Level
(0008,0054)	AE	RetrieveAETitle	1-n	Retrieve AE Title
(0008,0060)	CS	Modality	1	Modality
(0008,0064)	CS	ConversionType	1	Conversion Type
(0008,0070)	LO	Manufacturer	1	Manufacturer
(0008,0080)	LO	InstitutionName	1	Institution Name
(0008,0081)	ST	InstitutionAddress	1	Institution Address
(0008,0090)	PN	ReferringPhysicianName	1	Referring Physician's Name
(0008,1010)	SH	StationName	1	Station Name
(0008,1030)	LO	StudyDescription	1	Study Description
(0008,103E)	LO	SeriesDescription	1	Series Description
(0008,1040)	LO	InstitutionalDepartmentName	1	Institutional Department Name
(0008,1050)	PN	PerformingPhysicianName	1-n	Performing Physician's Name
(0008,1090)	LO	ManufacturerModelName	1	Manufacturer's Model Name
(0008,1140)	SQ	ReferencedImageSequence	1	Referenced Image Sequence
(0008,1150)	UI	ReferencedSOPClassUID	1	Referenced SOP Class UID
(0008,1155)	UI	ReferencedSOPInstanceUID	1	Referenced SOP Instance UID
(0008,2111)	ST	DerivationDescription	1	Derivation Description
(0008,9215)	SQ	DerivationCodeSequence	1	Derivation Code Sequence
(0008,0100)	SH	CodeValue	1	Code Value
(0008,0102)	SH	CodingSchemeDesignator	1	Coding Scheme Designator
(0008,0104)	LO	CodeMeaning	1	Code Meaning
# Patient
(0010,0010)	PN	PatientName	1	Patient's Name
(0010,0020)	LO	PatientID	1	Patient ID
(0010,0021)	LO	IssuerOfPatientID	1	Issuer of Patient ID
(0010,0030)	DA	PatientBirthDate	1	Patient's Birth Date
(0010,0032)	TM	PatientBirthTime	1	Patient's Birth Time
(0010,0040)	CS	PatientSex	1	Patient's Sex
(0010,1000)	LO	OtherPatientIDs	1-n	Other Patient IDs
(0010,1010)	AS	PatientAge	1	Patient's Age
(0010,1020)	DS	PatientSize	1	Patient's Size
(0010,1030)	DS	PatientWeight	1	Patient's Weight
(0010,4000)	LT	PatientComments	1	Patient Comments
# Acquisition
(0018,0015)	CS	BodyPartExamined	1	Body Part Examined
(0018,0050)	DS	SliceThickness	1	Slice Thickness
(0018,0060)	DS	KVP	1	KVP
(0018,0088)	DS	SpacingBetweenSlices	1	Spacing Between Slices
(0018,1020)	LO	SoftwareVersions	1-n	Software Versions
(0018,1030)	LO	ProtocolName	1	Protocol Name
(0018,1150)	IS	ExposureTime	1	Exposure Time
(0018,1151)	IS	XRayTubeCurrent	1	X-Ray Tube Current
(0018,1152)	IS	Exposure	1	Exposure
(0018,5100)	CS	PatientPosition	1	Patient Position
# Relationship
(0020,000D)	UI	StudyInstanceUID	1	Study Instance UID
(0020,000E)	UI	SeriesInstanceUID	1	Series Instance UID
(0020,0010)	SH	StudyID	1	Study ID
(0020,0011)	IS	SeriesNumber	1	Series Number
(0020,0012)	IS	AcquisitionNumber	1	Acquisition Number
(0020,0013)	IS	InstanceNumber	1	Instance Number
(0020,0020)	CS	PatientOrientation	2	Patient Orientation
(0020,0032)	DS	ImagePositionPatient	3	Image Position (Patient)
(0020,0037)	DS	ImageOrientationPatient	6	Image Orientation (Patient)
(0020,0052)	UI	FrameOfReferenceUID	1	Frame of Reference UID
(0020,1040)	LO	PositionReferenceIndicator	1	Position Reference Indicator
(0020,1041)	DS	SliceLocation	1	Slice Location
(0020,4000)	LT	ImageComments	1	Image Comments
# Image Pixel
(0028,0002)	US	SamplesPerPixel	1	Samples per Pixel
(0028,0004)	CS	PhotometricInterpretation	1	Photometric Interpretation
(0028,0006)	US	PlanarConfiguration	1	Planar Configuration
(0028,0008)	IS	NumberOfFrames	1	Number of Frames
(0028,0009)	AT	FrameIncrementPointer	1-n	Frame Increment Pointer
(0028,0010)	US	Rows	1	Rows
(0028,0011)	US	Columns	1	Columns
(0028,0030)	DS	PixelSpacing	2	Pixel Spacing
(0028,0034)	IS	PixelAspectRatio	2	Pixel Aspect Ratio
(0028,0100)	US	BitsAllocated	1	Bits Allocated
(0028,0101)	US	BitsStored	1	Bits Stored
(0028,0102)	US	HighBit	1	High Bit
(0028,0103)	US	PixelRepresentation	1	Pixel Representation
(0028,0106)	US	SmallestImagePixelValue	1	Smallest Image Pixel Value
(0028,0107)	US	LargestImagePixelValue	1	Largest Image Pixel Value
(0028,1050)	DS	WindowCenter	1-n	Window Center
(0028,1051)	DS	WindowWidth	1-n	Window Width
(0028,1052)	DS	RescaleIntercept	1	Rescale Intercept
(0028,1053)	DS	RescaleSlope	1	Rescale Slope
(0028,1054)	LO	RescaleType	1	Rescale Type
(0028,1055)	LO	WindowCenterWidthExplanation	1-n	Window Center & Width Explanation
(0028,1056)	CS	VOILUTFunction	1	VOI LUT Function
(0028,1101)	US	RedPaletteColorLookupTableDescriptor	3	Red Palette Color Lookup Table Descriptor
(0028,1102)	US	GreenPaletteColorLookupTableDescriptor	3	Green Palette Color Lookup Table Descriptor
(0028,1103)	US	BluePaletteColorLookupTableDescriptor	3	Blue Palette Color Lookup Table Descriptor
(0028,1201)	OW	RedPaletteColorLookupTableData	1	Red Palette Color Lookup Table Data
(0028,1202)	OW	GreenPaletteColorLookupTableData	1	Green Palette Color Lookup Table Data
(0028,1203)	OW	BluePaletteColorLookupTableData	1	Blue Palette Color Lookup Table Data
(0028,2110)	CS	LossyImageCompression	1	Lossy Image Compression
(0028,2112)	DS	LossyImageCompressionRatio	1-n	Lossy Image Compression Ratio
# Overlay (repeating group 60xx)
(6000,0010)	US	OverlayRows	1	Overlay Rows
(6000,0011)	US	OverlayColumns	1	Overlay Columns
(6000,0015)	IS	NumberOfFramesInOverlay	1	Number of Frames in Overlay
(6000,0040)	CS	OverlayType	1	Overlay Type
(6000,0050)	SS	OverlayOrigin	2	Overlay Origin
(6000,0100)	US	OverlayBitsAllocated	1	Overlay Bits Allocated
(6000,0102)	US	OverlayBitPosition	1	Overlay Bit Position
(6000,3000)	OW	OverlayData	1	Overlay Data
# Pixel data and delimiters
(7FE0,0010)	OW	PixelData	1	Pixel Data
(FFFE,E000)	NA	Item	1	Item
(FFFE,E00D)	NA	ItemDelimitationItem	1	Item Delimitation Item
(FFFE,E0DD)	NA	SequenceDelimitationItem	1	Sequence Delimitation Item
`
