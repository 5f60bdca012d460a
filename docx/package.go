package docx

// Package wraps an emitted body fragment into the minimal word/document.xml
// substitution a zip-based .docx packager needs: the fixed header and
// footer around the document body, with the fragment spliced in place of
// the template's own content. It does not touch the filesystem or a zip
// archive itself -- producing the .docx container from a template remains
// an external collaborator's job.
type Package struct {
	Fragment string
}

const documentXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:wpc="http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas" xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006" xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math" xmlns:v="urn:schemas-microsoft-com:vml" xmlns:wp14="http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" xmlns:w10="urn:schemas-microsoft-com:office:word" xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml" xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape" mc:Ignorable="w14 wp14">
<w:body>
`

const documentXMLFooter = `
<w:sectPr/>
</w:body>
</w:document>
`

// DocumentXML returns the complete word/document.xml contents for this
// fragment.
func (p Package) DocumentXML() string {
	return documentXMLHeader + p.Fragment + documentXMLFooter
}
