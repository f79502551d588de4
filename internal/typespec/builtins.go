package typespec

// Qt module names used by the built-in mappings.
const (
	QtModule      = "qml"
	QtQuickModule = "qml.QtQuick"
)

var builtinMappings = []TypeMapping{
	{Name: "void", CName: "void", Module: QtModule},
	{Name: "bool", CName: "bool", Module: QtModule},
	{Name: "int", CName: "int", Module: QtModule},
	{Name: "int", CName: "qint32", Module: QtModule},
	{Name: "int", CName: "quint32", Module: QtModule},
	{Name: "int", CName: "qsizetype", Module: QtModule},
	{Name: "int", CName: "unsigned int", Module: QtModule},
	{Name: "real", CName: "qreal", Module: QtModule},
	{Name: "real", CName: "double", Module: QtModule},
	{Name: "real", CName: "float", Module: QtModule},
	{Name: "string", CName: "QString", Module: QtModule},
	{Name: "list", CName: "QStringList", Module: QtModule},
	{Name: "url", CName: "QUrl", Module: QtModule},
	{Name: "color", CName: "QColor", Module: QtModule},
	{Name: "date", CName: "QDateTime", Module: QtModule},
	{Name: "date", CName: "QDate", Module: QtModule},
	{Name: "var", CName: "QVariant", Module: QtModule},
	{Name: "var", CName: "QVariantMap", Module: QtModule},
	{Name: "var", CName: "QJSValue", Module: QtModule},
	{Name: "list", CName: "QVariantList", Module: QtModule},
	{Name: "list", CName: "QList", Module: QtModule},
	{Name: "list", CName: "QVector", Module: QtModule},
	{Name: "list", CName: "QQmlListProperty", Module: QtModule},
	{Name: "point", CName: "QPointF", Module: QtModule},
	{Name: "point", CName: "QPoint", Module: QtModule},
	{Name: "size", CName: "QSizeF", Module: QtModule},
	{Name: "size", CName: "QSize", Module: QtModule},
	{Name: "rect", CName: "QRectF", Module: QtModule},
	{Name: "rect", CName: "QRect", Module: QtModule},
	{Name: "matrix4x4", CName: "QMatrix4x4", Module: QtModule},
	{Name: "QtObject", CName: "QObject", Module: QtModule},
	{Name: "Component", CName: "QQmlComponent", Module: QtModule},
	{Name: "font", CName: "QFont", Module: QtQuickModule},
	{Name: "Item", CName: "QQuickItem", Module: QtQuickModule},
	{Name: "Window", CName: "QQuickWindow", Module: QtQuickModule},
	{Name: "Rectangle", CName: "QQuickRectangle", Module: QtQuickModule},
	{Name: "Text", CName: "QQuickText", Module: QtQuickModule},
	{Name: "Image", CName: "QQuickImage", Module: QtQuickModule},
	{Name: "MouseArea", CName: "QQuickMouseArea", Module: QtQuickModule},
	{Name: "Row", CName: "QQuickRow", Module: QtQuickModule},
	{Name: "Column", CName: "QQuickColumn", Module: QtQuickModule},
	{Name: "Repeater", CName: "QQuickRepeater", Module: QtQuickModule},
	{Name: "Loader", CName: "QQuickLoader", Module: QtQuickModule},
	{Name: "Flickable", CName: "QQuickFlickable", Module: QtQuickModule},
	{Name: "ListView", CName: "QQuickListView", Module: QtQuickModule},
}

// Builtins returns a spec mapping common Qt C++ types to their QML names.
// It is merged ahead of module specs so base types do not resolve as unknown.
func Builtins() TypeSpec {
	mappings := make([]TypeMapping, len(builtinMappings))
	copy(mappings, builtinMappings)
	return TypeSpec{TypeMap: mappings}
}

// IsQtModule reports whether a mapping module belongs to Qt rather than a documented module.
func IsQtModule(module string) bool {
	return module == "" || module == QtModule || len(module) > len(QtModule) && module[:len(QtModule)+1] == QtModule+"."
}
